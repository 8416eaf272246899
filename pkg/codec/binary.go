package codec

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/reqvault/reqvault/pkg/capture"
)

// Binary is the compact encoding: the persisted record is Snappy-compressed
// and carried in the segment map as an opaque base64 value.
type Binary struct{}

var _ Codec = Binary{}

// Encode serializes the entry, compresses it, and wraps the compressed bytes
// as a JSON base64 value.
func (Binary) Encode(e *capture.Entry) (json.RawMessage, error) {
	rec, err := toRecord(e)
	if err != nil {
		return nil, err
	}
	plain, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	packed := snappy.Encode(nil, plain)

	raw, err := json.Marshal(packed)
	if err != nil {
		return nil, fmt.Errorf("wrap compressed record: %w", err)
	}
	return raw, nil
}

// Decode unwraps the base64 value, decompresses it, and parses the record.
func (Binary) Decode(id string, raw json.RawMessage) (*capture.Entry, error) {
	var packed []byte
	if err := json.Unmarshal(raw, &packed); err != nil {
		return nil, fmt.Errorf("unwrap compressed record: %w", err)
	}
	plain, err := snappy.Decode(nil, packed)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	var rec record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec.toEntry(id)
}

// Mode reports ModeBinary.
func (Binary) Mode() Mode { return ModeBinary }
