package logstore

import "encoding/json"

// index maps entry id to its locator: the name of the segment that owns the
// entry. Index entries are appended, never removed, even across rotations,
// so the index outlives compaction.
type index map[string]string

// loadIndex reads and parses the index file, recovering to an empty index
// on any parse failure.
func (e *Engine) loadIndex() index {
	data, ok := e.readFile(indexFile)
	if !ok {
		return index{}
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		e.logger.Warn("index file is not a valid locator map, treating as empty",
			"file", indexFile, "error", err)
		return index{}
	}
	if idx == nil {
		idx = index{}
	}
	return idx
}

// persistIndex overwrites the index file with the full mapping.
func (e *Engine) persistIndex(idx index) {
	data, err := json.Marshal(idx)
	if err != nil {
		e.logger.Error("cannot serialize index", "error", err)
		return
	}
	e.writeFile(indexFile, data)
}
