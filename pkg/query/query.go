// Package query searches stored request captures: expression-based
// filtering across all segments, index-backed lookup of a single entry, and
// JSONPath projection of results.
package query

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reqvault/reqvault/pkg/capture"
)

// ErrNotFound is returned when an entry id is absent from the index or its
// owning segment.
var ErrNotFound = errors.New("entry not found")

// Store is the slice of the log-store engine the finder needs.
type Store interface {
	Retrieve(segment string) ([]*capture.Entry, error)
	Locate(id string) (string, bool)
	Segments() []string
}

// Finder runs searches against a log store.
type Finder struct {
	store  Store
	logger *slog.Logger
}

// New builds a Finder. A nil logger falls back to slog.Default().
func New(store Store, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{store: store, logger: logger}
}

// Find resolves an entry by id through the index locator and loads it from
// its owning segment.
func (f *Finder) Find(id string) (*capture.Entry, error) {
	segment, ok := f.store.Locate(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	entries, err := f.store.Retrieve(segment)
	if err != nil {
		return nil, fmt.Errorf("load segment %s: %w", segment, err)
	}
	for _, entry := range entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	// The index is append-only, so a locator can outlive its entry when a
	// segment file is deleted or truncated externally.
	return nil, fmt.Errorf("%w: %s (segment %s)", ErrNotFound, id, segment)
}

// Search evaluates a boolean filter expression against every stored entry
// and returns the matches. The expression sees the fields id, method, ip,
// occurred, body, queryParams and headers, e.g.:
//
//	method == "POST" && body.user == "ana"
func (f *Finder) Search(expression string) ([]*capture.Entry, error) {
	program, err := compileFilter(expression)
	if err != nil {
		return nil, err
	}

	var matches []*capture.Entry
	seen := make(map[string]bool)
	for _, segment := range f.store.Segments() {
		entries, err := f.store.Retrieve(segment)
		if err != nil {
			return nil, fmt.Errorf("load segment %s: %w", segment, err)
		}
		for _, entry := range entries {
			if seen[entry.ID] {
				continue
			}
			seen[entry.ID] = true

			ok, err := evalFilter(program, entry)
			if err != nil {
				f.logger.Warn("filter evaluation failed for entry, skipping",
					"id", entry.ID, "segment", segment, "error", err)
				continue
			}
			if ok {
				matches = append(matches, entry)
			}
		}
	}
	return matches, nil
}

func compileFilter(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(environment(&capture.Entry{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	return program, nil
}

func evalFilter(program *vm.Program, entry *capture.Entry) (bool, error) {
	out, err := expr.Run(program, environment(entry))
	if err != nil {
		return false, err
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not evaluate to a boolean")
	}
	return matched, nil
}

// environment exposes an entry to the expression VM.
func environment(entry *capture.Entry) map[string]any {
	return map[string]any{
		"id":          entry.ID,
		"method":      entry.Method,
		"ip":          entry.IP,
		"occurred":    entry.Occurred,
		"body":        entry.Body,
		"queryParams": entry.QueryParams,
		"headers":     entry.Headers,
	}
}
