package codec

import (
	"encoding/json"
	"fmt"

	"github.com/reqvault/reqvault/pkg/capture"
)

// Text is the plain structured-text encoding: the persisted record is kept
// as readable JSON inside the segment map.
type Text struct{}

var _ Codec = Text{}

// Encode serializes the entry as a plain JSON record.
func (Text) Encode(e *capture.Entry) (json.RawMessage, error) {
	rec, err := toRecord(e)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

// Decode parses a plain JSON record back into an entry.
func (Text) Decode(id string, raw json.RawMessage) (*capture.Entry, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec.toEntry(id)
}

// Mode reports ModeText.
func (Text) Mode() Mode { return ModeText }
