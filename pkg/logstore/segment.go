package logstore

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultSegment is the segment used when the directory holds none yet.
const DefaultSegment = "logs_0"

// segmentPattern matches segment file names and captures the numeric suffix.
var segmentPattern = regexp.MustCompile(`^logs_(\d+)\.json$`)

// segmentFileName maps a segment name to its file name.
func segmentFileName(name string) string {
	return name + ".json"
}

// segment holds the current segment's entries in memory. Persistence is
// whole-file overwrite, so the segment never tracks offsets; insertion
// order is kept only to honor the keep-most-recent compaction rule.
type segment struct {
	name    string
	entries map[string]json.RawMessage
	order   []string
}

func newSegment(name string) *segment {
	return &segment{name: name, entries: make(map[string]json.RawMessage)}
}

// append merges one id to encoded-entry pair into the in-memory map.
func (s *segment) append(id string, encoded json.RawMessage) {
	if _, exists := s.entries[id]; !exists {
		s.order = append(s.order, id)
	}
	s.entries[id] = encoded
}

// serializedSize is the byte length of the segment's on-disk serialization.
func (s *segment) serializedSize() int64 {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return 0
	}
	return int64(len(data))
}

// compact discards everything but the most recently inserted entry. The
// prior segment file on disk is left untouched and becomes a closed
// historical segment.
func (s *segment) compact() {
	if len(s.order) == 0 {
		return
	}
	last := s.order[len(s.order)-1]
	encoded := s.entries[last]
	s.entries = map[string]json.RawMessage{last: encoded}
	s.order = []string{last}
}

// nextSegmentName increments the numeric suffix embedded in name by one.
// Names without a numeric suffix are malformed and yield an error.
func nextSegmentName(name string) (string, error) {
	idx := strings.LastIndex(name, "_")
	if idx < 0 || idx == len(name)-1 {
		return "", fmt.Errorf("segment name %q has no numeric suffix", name)
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return "", fmt.Errorf("segment name %q has no numeric suffix", name)
	}
	return name[:idx+1] + strconv.Itoa(n+1), nil
}

// currentSegmentName resolves the writable segment. An explicit name wins;
// otherwise the directory is scanned for the maximum numeric suffix, with
// DefaultSegment as the fallback when no segment file exists yet.
func (e *Engine) currentSegmentName(explicit string) string {
	if explicit != "" {
		return strings.TrimSuffix(explicit, ".json")
	}

	dirEntries, err := os.ReadDir(e.cfg.Path)
	if err != nil {
		return DefaultSegment
	}

	best := -1
	name := DefaultSegment
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		m := segmentPattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best {
			best = n
			name = strings.TrimSuffix(de.Name(), ".json")
		}
	}
	return name
}

// listSegments returns every segment name in the storage directory, in
// ascending numeric order.
func (e *Engine) listSegments() []string {
	dirEntries, err := os.ReadDir(e.cfg.Path)
	if err != nil {
		return nil
	}

	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		m := segmentPattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{name: strings.TrimSuffix(de.Name(), ".json"), n: n})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}

// loadSegment reads and parses one segment file. Parse failures recover to
// an empty segment with a logged warning; the bytes on disk stay untouched
// until the next save overwrites them.
func (e *Engine) loadSegment(name string) *segment {
	seg := newSegment(name)

	data, ok := e.readFile(segmentFileName(name))
	if !ok {
		return seg
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		e.logger.Warn("segment file is not a valid entry map, treating as empty",
			"segment", name, "error", err)
		return seg
	}
	for id, encoded := range entries {
		seg.append(id, encoded)
	}
	return seg
}

// persistSegment overwrites the segment file with the full in-memory map.
func (e *Engine) persistSegment(seg *segment) {
	data, err := json.Marshal(seg.entries)
	if err != nil {
		e.logger.Error("cannot serialize segment", "segment", seg.name, "error", err)
		return
	}
	e.writeFile(segmentFileName(seg.name), data)
}

// rotateIfNeeded rotates the segment when candidateSize exceeds the
// threshold: the numeric suffix advances by one and the in-memory map is
// compacted down to its most recent entry. A malformed segment name logs an
// error and skips rotation.
func (e *Engine) rotateIfNeeded(seg *segment, candidateSize int64) {
	if candidateSize <= e.cfg.rotationBytes() {
		return
	}
	next, err := nextSegmentName(seg.name)
	if err != nil {
		e.logger.Error("cannot rotate segment", "segment", seg.name, "error", err)
		return
	}
	e.logger.Info("rotating segment", "from", seg.name, "to", next, "size", candidateSize)
	seg.name = next
	seg.compact()
}
