package query

import (
	"fmt"
	"time"

	"github.com/ohler55/ojg/jp"

	"github.com/reqvault/reqvault/pkg/capture"
)

// Project applies a JSONPath expression to each entry and collects the
// results, e.g. "$.body.user" or "$.headers['Content-Type']". Entries the
// path does not match contribute nothing.
func Project(entries []*capture.Entry, path string) ([]any, error) {
	parsed, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("parse jsonpath %q: %w", path, err)
	}

	var results []any
	for _, entry := range entries {
		results = append(results, parsed.Get(entryDocument(entry))...)
	}
	return results, nil
}

// entryDocument flattens an entry into the generic map shape JSONPath
// evaluation works on.
func entryDocument(entry *capture.Entry) map[string]any {
	headers := make(map[string]any, len(entry.Headers))
	for k, v := range entry.Headers {
		headers[k] = v
	}
	queryParams := make(map[string]any, len(entry.QueryParams))
	for k, v := range entry.QueryParams {
		queryParams[k] = v
	}
	return map[string]any{
		"id":          entry.ID,
		"method":      entry.Method,
		"ip":          entry.IP,
		"occurred":    entry.Occurred.UTC().Format(time.RFC3339Nano),
		"body":        entry.Body,
		"queryParams": queryParams,
		"headers":     headers,
	}
}
