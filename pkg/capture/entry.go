// Package capture defines the captured-request model: the Entry type, the
// normalization of *http.Request into an Entry, and field-level redaction
// applied before an Entry is persisted.
package capture

import "time"

// Entry is one captured request snapshot. An Entry is created once, at
// capture time, and never mutated afterward (redaction happens during
// capture, before the entry reaches storage).
type Entry struct {
	// ID is the unique identifier for the entry, generated at capture time.
	// It is the primary key within a segment and across the index.
	ID string `json:"id"`

	// Method is the HTTP method, present only when method capture is enabled.
	Method string `json:"method,omitempty"`

	// Body holds the parsed request body. Non-JSON bodies are wrapped under
	// a single "raw" key.
	Body map[string]any `json:"body"`

	// QueryParams holds the query string parameters (first value per key).
	QueryParams map[string]string `json:"queryParams"`

	// Headers holds the request headers (first value per key) with the
	// transport-added Content-Length header removed.
	Headers map[string]string `json:"headers"`

	// IP is the client address, present only when address capture is enabled.
	IP string `json:"ip,omitempty"`

	// Occurred is the capture timestamp. Persisted as RFC 3339 text and
	// exempt from redaction.
	Occurred time.Time `json:"occurred"`
}

// Options controls which request fields are captured into an Entry.
type Options struct {
	// Method includes the HTTP method.
	Method bool `json:"method" yaml:"method"`

	// Body includes the request body.
	Body bool `json:"body" yaml:"body"`

	// QueryParams includes the query string parameters.
	QueryParams bool `json:"queryParams" yaml:"queryParams"`

	// Headers includes the request headers.
	Headers bool `json:"headers" yaml:"headers"`

	// IP includes the client address.
	IP bool `json:"ip" yaml:"ip"`

	// Obfuscate lists body field names whose values are replaced with
	// the redaction marker before persistence.
	Obfuscate []string `json:"obfuscate" yaml:"obfuscate"`
}

// DefaultOptions captures every field and redacts nothing.
func DefaultOptions() Options {
	return Options{
		Method:      true,
		Body:        true,
		QueryParams: true,
		Headers:     true,
		IP:          true,
	}
}
