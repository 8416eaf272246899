// Package config loads and saves the reqvault configuration file.
// JSON and YAML are both accepted; the format is picked by file extension.
package config

import (
	"log/slog"

	"github.com/reqvault/reqvault/pkg/capture"
	"github.com/reqvault/reqvault/pkg/logstore"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "reqvault.yaml"

// Config is the top-level configuration file shape.
type Config struct {
	// Path is the storage root for segments, index and config snapshot.
	Path string `json:"path" yaml:"path"`

	// Listen is the address the capture server binds to.
	Listen string `json:"listen" yaml:"listen"`

	// Capture controls field inclusion and obfuscation.
	Capture capture.Options `json:"capture" yaml:"capture"`

	// DisableBinary selects the structured-text entry encoding.
	DisableBinary bool `json:"disableBinary" yaml:"disableBinary"`

	// RotationBytes is the segment rotation threshold in bytes.
	RotationBytes int64 `json:"rotationBytes" yaml:"rotationBytes"`

	// Replay configures the replay target.
	Replay ReplayConfig `json:"replay" yaml:"replay"`

	// Log configures logging output.
	Log LogConfig `json:"log" yaml:"log"`
}

// ReplayConfig configures the replay engine.
type ReplayConfig struct {
	// Target is the base URL replayed requests are sent to.
	Target string `json:"target" yaml:"target"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" yaml:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// Default returns the starter configuration written by `reqvault init`.
func Default() *Config {
	return &Config{
		Path:          "./captures",
		Listen:        "127.0.0.1:8640",
		Capture:       capture.DefaultOptions(),
		RotationBytes: logstore.DefaultRotationBytes,
		Log:           LogConfig{Level: "info", Format: "text"},
	}
}

// StoreConfig derives the engine configuration.
func (c *Config) StoreConfig(logger *slog.Logger) logstore.Config {
	return logstore.Config{
		Path:          c.Path,
		Capture:       c.Capture,
		DisableBinary: c.DisableBinary,
		RotationBytes: c.RotationBytes,
		Logger:        logger,
	}
}
