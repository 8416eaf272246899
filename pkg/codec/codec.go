// Package codec provides the two interchangeable on-disk encodings for
// captured entries: a plain structured-text encoding and a compact binary
// encoding. Segment files are JSON maps from entry id to encoded value, so
// both codecs produce and consume json.RawMessage values.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/reqvault/reqvault/pkg/capture"
)

// Mode identifies an entry encoding.
type Mode string

// Encoding modes.
const (
	ModeText   Mode = "text"
	ModeBinary Mode = "binary"
)

// Codec encodes an entry into its persisted representation and back.
type Codec interface {
	// Encode produces the segment map value for the entry.
	Encode(e *capture.Entry) (json.RawMessage, error)

	// Decode parses a segment map value back into an entry. The entry id is
	// the segment map key, not part of the encoded value, so the caller
	// supplies it.
	Decode(id string, raw json.RawMessage) (*capture.Entry, error)

	// Mode reports which encoding this codec implements.
	Mode() Mode
}

// ForMode returns the codec for the given mode. Unknown modes fall back to
// the text codec.
func ForMode(mode Mode) Codec {
	if mode == ModeBinary {
		return Binary{}
	}
	return Text{}
}

// record is the persisted shape of an entry. The body, query parameter and
// header maps are carried as serialized JSON text blobs; the timestamp is
// carried as RFC 3339 text.
type record struct {
	Method      string `json:"method,omitempty"`
	Body        string `json:"body"`
	QueryParams string `json:"queryParams"`
	Headers     string `json:"headers"`
	IP          string `json:"ip,omitempty"`
	Occurred    string `json:"occurred"`
}

func toRecord(e *capture.Entry) (*record, error) {
	body, err := marshalBlob(e.Body)
	if err != nil {
		return nil, fmt.Errorf("serialize body: %w", err)
	}
	query, err := marshalBlob(e.QueryParams)
	if err != nil {
		return nil, fmt.Errorf("serialize query params: %w", err)
	}
	headers, err := marshalBlob(e.Headers)
	if err != nil {
		return nil, fmt.Errorf("serialize headers: %w", err)
	}
	return &record{
		Method:      e.Method,
		Body:        body,
		QueryParams: query,
		Headers:     headers,
		IP:          e.IP,
		Occurred:    e.Occurred.UTC().Format(time.RFC3339Nano),
	}, nil
}

func (r *record) toEntry(id string) (*capture.Entry, error) {
	entry := &capture.Entry{
		ID:          id,
		Method:      r.Method,
		Body:        map[string]any{},
		QueryParams: map[string]string{},
		Headers:     map[string]string{},
		IP:          r.IP,
	}
	if err := unmarshalBlob(r.Body, &entry.Body); err != nil {
		return nil, fmt.Errorf("parse body blob: %w", err)
	}
	if err := unmarshalBlob(r.QueryParams, &entry.QueryParams); err != nil {
		return nil, fmt.Errorf("parse query params blob: %w", err)
	}
	if err := unmarshalBlob(r.Headers, &entry.Headers); err != nil {
		return nil, fmt.Errorf("parse headers blob: %w", err)
	}
	occurred, err := time.Parse(time.RFC3339Nano, r.Occurred)
	if err != nil {
		return nil, fmt.Errorf("parse occurred timestamp: %w", err)
	}
	entry.Occurred = occurred
	return entry, nil
}

func marshalBlob(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalBlob(blob string, dst any) error {
	if blob == "" || blob == "null" {
		return nil
	}
	return json.Unmarshal([]byte(blob), dst)
}
