// Package replay re-issues stored request captures against a live endpoint.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/reqvault/reqvault/pkg/capture"
)

// maxResponseExcerpt bounds how much of the response body a Result carries.
const maxResponseExcerpt = 10 * 1024

// Replayer re-issues captured requests against a target base URL.
type Replayer struct {
	client *http.Client
	target string
}

// New builds a Replayer for the given target base URL. A nil client falls
// back to a client with a 30 second timeout.
func New(target string, client *http.Client) *Replayer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Replayer{client: client, target: target}
}

// Result describes one replayed request.
type Result struct {
	// EntryID is the id of the replayed capture.
	EntryID string `json:"entryId"`

	// Status is the response status code.
	Status int `json:"status"`

	// DurationMs is the wall time of the round trip in milliseconds.
	DurationMs int64 `json:"durationMs"`

	// Body is the leading part of the response body.
	Body string `json:"body,omitempty"`
}

// Replay rebuilds the entry's method, query string, headers and body and
// sends it to the target.
func (rp *Replayer) Replay(ctx context.Context, entry *capture.Entry) (*Result, error) {
	if entry == nil {
		return nil, errors.New("nil entry")
	}

	req, err := rp.buildRequest(ctx, entry)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := rp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replay entry %s: %w", entry.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	excerpt, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseExcerpt))
	if err != nil {
		return nil, fmt.Errorf("read replay response: %w", err)
	}

	return &Result{
		EntryID:    entry.ID,
		Status:     resp.StatusCode,
		DurationMs: time.Since(start).Milliseconds(),
		Body:       string(excerpt),
	}, nil
}

// buildRequest reconstructs an outbound request from a captured entry.
func (rp *Replayer) buildRequest(ctx context.Context, entry *capture.Entry) (*http.Request, error) {
	target, err := url.Parse(rp.target)
	if err != nil {
		return nil, fmt.Errorf("parse target url: %w", err)
	}

	values := url.Values{}
	for key, value := range entry.QueryParams {
		values.Set(key, value)
	}
	target.RawQuery = values.Encode()

	method := entry.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(entry.Body) > 0 {
		data, err := json.Marshal(entry.Body)
		if err != nil {
			return nil, fmt.Errorf("serialize body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build replay request: %w", err)
	}
	for key, value := range entry.Headers {
		req.Header.Set(key, value)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
