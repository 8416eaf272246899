package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqvault/reqvault/pkg/capture"
)

func sampleEntry() *capture.Entry {
	return &capture.Entry{
		ID:     "e-1",
		Method: "POST",
		Body: map[string]any{
			"user":     "ana",
			"password": capture.RedactedValue,
			"attempts": float64(3),
		},
		QueryParams: map[string]string{"next": "/home"},
		Headers:     map[string]string{"Content-Type": "application/json"},
		IP:          "192.0.2.10",
		Occurred:    time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{Text{}, Binary{}} {
		t.Run(string(c.Mode()), func(t *testing.T) {
			entry := sampleEntry()

			raw, err := c.Encode(entry)
			require.NoError(t, err)

			decoded, err := c.Decode(entry.ID, raw)
			require.NoError(t, err)

			assert.Equal(t, entry.ID, decoded.ID)
			assert.Equal(t, entry.Method, decoded.Method)
			assert.Equal(t, entry.Body, decoded.Body)
			assert.Equal(t, entry.QueryParams, decoded.QueryParams)
			assert.Equal(t, entry.Headers, decoded.Headers)
			assert.Equal(t, entry.IP, decoded.IP)
			assert.True(t, entry.Occurred.Equal(decoded.Occurred),
				"occurred mismatch: %v vs %v", entry.Occurred, decoded.Occurred)
		})
	}
}

func TestTextEncodingIsReadable(t *testing.T) {
	raw, err := Text{}.Encode(sampleEntry())
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(raw, &rec))

	assert.Equal(t, "POST", rec["method"])
	assert.Equal(t, "192.0.2.10", rec["ip"])
	assert.Equal(t, "2026-03-14T09:26:53.589Z", rec["occurred"])

	// Body is a serialized text blob, not a nested object.
	body, ok := rec["body"].(string)
	require.True(t, ok, "body must be a string blob")
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &parsed))
	assert.Equal(t, "ana", parsed["user"])
}

func TestBinaryEncodingIsOpaque(t *testing.T) {
	raw, err := Binary{}.Encode(sampleEntry())
	require.NoError(t, err)

	// The segment map value is a single base64 JSON string, not an object.
	var packed []byte
	require.NoError(t, json.Unmarshal(raw, &packed))
	assert.NotEmpty(t, packed)

	var obj map[string]any
	assert.Error(t, json.Unmarshal(raw, &obj))
}

func TestOptionalFieldsOmitted(t *testing.T) {
	entry := sampleEntry()
	entry.Method = ""
	entry.IP = ""

	raw, err := Text{}.Encode(entry)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(raw, &rec))
	_, hasMethod := rec["method"]
	_, hasIP := rec["ip"]
	assert.False(t, hasMethod)
	assert.False(t, hasIP)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, c := range []Codec{Text{}, Binary{}} {
		_, err := c.Decode("x", json.RawMessage(`{{not json`))
		assert.Error(t, err, "mode %s", c.Mode())
	}
}

func TestForMode(t *testing.T) {
	assert.Equal(t, ModeBinary, ForMode(ModeBinary).Mode())
	assert.Equal(t, ModeText, ForMode(ModeText).Mode())
	assert.Equal(t, ModeText, ForMode("bogus").Mode())
}
