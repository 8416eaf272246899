// Package logstore implements the request-capture log store: segment files
// rotated by size, an append-only id-to-segment index, a persisted config
// snapshot of the active encoding mode, and field-level redaction applied
// before persistence.
//
// Persistence is whole-file overwrite. Every capture re-reads the index,
// config snapshot and current segment from disk, applies the write in
// memory, and writes all three files back. Load failures recover to empty
// defaults; persist failures are logged and absorbed. The only error the
// engine ever surfaces is the inability to create a required bootstrap file.
package logstore

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/reqvault/reqvault/pkg/capture"
	"github.com/reqvault/reqvault/pkg/codec"
)

// Engine composes the redactor, codec, segment store, index and config
// snapshot into the two public operations, Capture and Retrieve. Files on
// disk are the only durable state; a single mutex serializes the capture
// path so no two calls interleave their read-modify-write sequence.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	logger   *slog.Logger
	redactor *capture.Redactor
}

// New builds an engine from cfg. The engine assumes it is the only process
// writing to cfg.Path.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		redactor: capture.NewRedactor(cfg.Capture.Obfuscate),
	}
}

// Capture normalizes the request into an entry and records it. It is the
// http-facing variant of CaptureEntry.
func (e *Engine) Capture(r *http.Request) error {
	entry, err := capture.FromRequest(r, e.cfg.Capture)
	if err != nil {
		return fmt.Errorf("normalize request: %w", err)
	}
	return e.CaptureEntry(entry)
}

// CaptureEntry redacts, encodes and persists one entry: current segment,
// index and config snapshot are updated together. On success all three
// files have been rewritten (best-effort; individual write failures are
// logged, not surfaced). The only surfaced error is *CannotCreateFileError
// from bootstrap, or an encoding failure.
func (e *Engine) CaptureEntry(entry *capture.Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	segName := e.currentSegmentName("")
	if err := e.bootstrap(segName); err != nil {
		return err
	}

	seg := e.loadSegment(segName)
	idx := e.loadIndex()
	snap := e.loadSnapshot()

	e.redactor.Redact(entry)

	enc := codec.ForMode(snap.mode())
	encoded, err := enc.Encode(entry)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", entry.ID, err)
	}

	// Rotation is decided on the size the segment would reach with this
	// entry included, before anything is persisted.
	candidateSize := seg.serializedSize() + int64(len(encoded))
	seg.append(entry.ID, encoded)
	e.rotateIfNeeded(seg, candidateSize)

	// The locator records the segment that owns the entry, which after a
	// rotation is the new current segment.
	idx[entry.ID] = seg.name

	e.persistSegment(seg)
	e.persistIndex(idx)
	e.persistSnapshot(snap)
	return nil
}

// Retrieve loads the entries of one segment: the named one, or the current
// (maximum numeric suffix) segment when name is empty. Unreadable or
// corrupted state yields an empty result, never an error; the only surfaced
// error is *CannotCreateFileError from bootstrap.
func (e *Engine) Retrieve(name string) ([]*capture.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	segName := e.currentSegmentName(name)
	if err := e.bootstrap(segName); err != nil {
		return nil, err
	}

	snap := e.loadSnapshot()
	seg := e.loadSegment(segName)

	return e.decodeSegment(seg, codec.ForMode(snap.mode())), nil
}

// Locate returns the owning segment recorded in the index for an entry id.
func (e *Engine) Locate(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	locator, ok := e.loadIndex()[id]
	return locator, ok
}

// Segments lists the segment names present in the storage directory, in
// ascending numeric order.
func (e *Engine) Segments() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listSegments()
}

// decodeSegment decodes every entry of a loaded segment, skipping (with a
// warning) values the codec rejects. Results are ordered by capture time.
func (e *Engine) decodeSegment(seg *segment, dec codec.Codec) []*capture.Entry {
	entries := make([]*capture.Entry, 0, len(seg.entries))
	for id, raw := range seg.entries {
		entry, err := dec.Decode(id, raw)
		if err != nil {
			e.logger.Warn("skipping undecodable entry", "segment", seg.name, "id", id, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Occurred.Equal(entries[j].Occurred) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Occurred.Before(entries[j].Occurred)
	})
	return entries
}
