package logstore

import (
	"log/slog"

	"github.com/reqvault/reqvault/pkg/capture"
)

// DefaultRotationBytes is the segment rotation threshold used when the
// configuration leaves it unset.
const DefaultRotationBytes = 64 * 1024

// Config configures a log-store engine. It is constructed once and passed
// into New; no component reads ambient process state.
type Config struct {
	// Path is the storage root directory.
	Path string `json:"path" yaml:"path"`

	// Capture controls which request fields are captured and which body
	// fields are obfuscated.
	Capture capture.Options `json:"capture" yaml:"capture"`

	// DisableBinary selects the plain structured-text encoding instead of
	// the compact binary one. Only consulted until the first write; after
	// that the persisted config snapshot is authoritative.
	DisableBinary bool `json:"disableBinary" yaml:"disableBinary"`

	// RotationBytes is the segment size threshold in bytes that triggers
	// rotation. Zero means DefaultRotationBytes.
	RotationBytes int64 `json:"rotationBytes" yaml:"rotationBytes"`

	// Logger receives warnings and errors. Nil means slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c Config) rotationBytes() int64 {
	if c.RotationBytes <= 0 {
		return DefaultRotationBytes
	}
	return c.RotationBytes
}
