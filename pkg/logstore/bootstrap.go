package logstore

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Storage directory file names.
const (
	configFile = "config.json"
	indexFile  = "index.json"
)

// emptyObject is the default body for map-shaped files.
var emptyObject = []byte("{}\n")

// ensureDir creates the storage root if absent. Failure is logged, not
// fatal: the subsequent ensureFile calls will surface the real error.
func (e *Engine) ensureDir() {
	if err := os.MkdirAll(e.cfg.Path, 0o700); err != nil {
		e.logger.Error("cannot create storage directory", "path", e.cfg.Path, "error", err)
	}
}

// ensureFile creates name under the storage root with defaultBody when it
// does not exist yet. Creation failure is the engine's single fatal error.
func (e *Engine) ensureFile(name string, defaultBody []byte) error {
	path := filepath.Join(e.cfg.Path, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, defaultBody, 0o600); err != nil {
		return &CannotCreateFileError{Name: name, Err: err}
	}
	return nil
}

// bootstrap guarantees the storage root and its three file kinds exist
// before any read or write proceeds. segName is the resolved current
// segment.
func (e *Engine) bootstrap(segName string) error {
	e.ensureDir()

	defaultSnap, err := json.Marshal(snapshot{DisableBinary: e.cfg.DisableBinary})
	if err != nil {
		defaultSnap = emptyObject
	}
	if err := e.ensureFile(configFile, defaultSnap); err != nil {
		return err
	}
	if err := e.ensureFile(indexFile, emptyObject); err != nil {
		return err
	}
	return e.ensureFile(segmentFileName(segName), emptyObject)
}

// readFile loads one storage file in full. A missing or unreadable file is
// reported through the ok result; the caller substitutes its default.
func (e *Engine) readFile(name string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(e.cfg.Path, name))
	if err != nil {
		e.logger.Warn("cannot read storage file, using default", "file", name, "error", err)
		return nil, false
	}
	return data, true
}

// writeFile overwrites one storage file in full. Failures are logged and
// absorbed: persistence is best-effort, never atomic.
func (e *Engine) writeFile(name string, data []byte) {
	if err := os.WriteFile(filepath.Join(e.cfg.Path, name), data, 0o600); err != nil {
		e.logger.Error("cannot persist storage file", "file", name, "error", err)
	}
}
