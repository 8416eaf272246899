package logstore

import (
	"encoding/json"

	"github.com/reqvault/reqvault/pkg/codec"
)

// snapshot is the persisted record of the active encoding mode. It is read
// back at the start of every session and rewritten on every save, so the
// store stays self-describing after the first write regardless of the
// caller-supplied configuration.
type snapshot struct {
	// DisableBinary selects the structured-text encoding when true.
	DisableBinary bool `json:"disableBinary"`
}

func (s snapshot) mode() codec.Mode {
	if s.DisableBinary {
		return codec.ModeText
	}
	return codec.ModeBinary
}

// loadSnapshot reads and validates the config snapshot. A parse failure or
// a snapshot missing its one expected field recovers to the engine
// configuration's value, with a warning naming the missing field.
func (e *Engine) loadSnapshot() snapshot {
	fallback := snapshot{DisableBinary: e.cfg.DisableBinary}

	data, ok := e.readFile(configFile)
	if !ok {
		return fallback
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		e.logger.Warn("config snapshot is not valid JSON, using configured default",
			"file", configFile, "error", err)
		return fallback
	}
	raw, present := fields["disableBinary"]
	if !present {
		e.logger.Warn("config snapshot is missing expected field, using configured default",
			"file", configFile, "field", "disableBinary")
		return fallback
	}
	var disabled bool
	if err := json.Unmarshal(raw, &disabled); err != nil {
		e.logger.Warn("config snapshot field has wrong type, using configured default",
			"file", configFile, "field", "disableBinary", "error", err)
		return fallback
	}
	return snapshot{DisableBinary: disabled}
}

// persistSnapshot rewrites the config snapshot file.
func (e *Engine) persistSnapshot(snap snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		e.logger.Error("cannot serialize config snapshot", "error", err)
		return
	}
	e.writeFile(configFile, data)
}
