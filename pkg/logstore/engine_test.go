package logstore

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqvault/reqvault/pkg/capture"
	"github.com/reqvault/reqvault/pkg/logging"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Path:    t.TempDir(),
		Capture: capture.DefaultOptions(),
		Logger:  logging.Nop(),
	}
}

func testEntry(body map[string]any) *capture.Entry {
	return &capture.Entry{
		ID:          uuid.NewString(),
		Method:      "POST",
		Body:        body,
		QueryParams: map[string]string{},
		Headers:     map[string]string{},
		Occurred:    time.Now().UTC(),
	}
}

func readJSONFile(t *testing.T, path string, dst any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, dst))
}

func TestCaptureCreatesStorageLayout(t *testing.T) {
	cfg := testConfig(t)
	engine := New(cfg)

	require.NoError(t, engine.CaptureEntry(testEntry(map[string]any{"a": "b"})))

	for _, name := range []string{"config.json", "index.json", "logs_0.json"} {
		_, err := os.Stat(filepath.Join(cfg.Path, name))
		assert.NoError(t, err, "expected %s to exist", name)
	}
}

func TestCaptureThenRetrieve(t *testing.T) {
	engine := New(testConfig(t))

	entry := testEntry(map[string]any{"user": "ana"})
	require.NoError(t, engine.CaptureEntry(entry))

	entries, err := engine.Retrieve("")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, "ana", entries[0].Body["user"])
	assert.Equal(t, "POST", entries[0].Method)
}

func TestSegmentSelectionPicksMaxSuffix(t *testing.T) {
	cfg := testConfig(t)
	for _, name := range []string{"logs_0.json", "logs_3.json", "logs_7.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Path, name), []byte("{}"), 0o600))
	}
	engine := New(cfg)

	assert.Equal(t, "logs_7", engine.currentSegmentName(""))

	entry := testEntry(map[string]any{"k": "v"})
	require.NoError(t, engine.CaptureEntry(entry))

	var seg map[string]json.RawMessage
	readJSONFile(t, filepath.Join(cfg.Path, "logs_7.json"), &seg)
	assert.Contains(t, seg, entry.ID)
}

func TestSegmentSelectionHonorsExplicitName(t *testing.T) {
	engine := New(testConfig(t))
	assert.Equal(t, "logs_4", engine.currentSegmentName("logs_4"))
	assert.Equal(t, "logs_4", engine.currentSegmentName("logs_4.json"))
}

func TestRotationIncrementsSuffixAndCompacts(t *testing.T) {
	cfg := testConfig(t)
	cfg.RotationBytes = 1 // every capture overflows
	engine := New(cfg)

	var ids []string
	for i := 0; i < 3; i++ {
		entry := testEntry(map[string]any{"n": float64(i)})
		ids = append(ids, entry.ID)
		require.NoError(t, engine.CaptureEntry(entry))
	}

	// Each capture rotated once: logs_0 -> logs_1 -> logs_2 -> logs_3,
	// and compaction left exactly the newest entry in each new segment.
	for i, id := range ids {
		segFile := filepath.Join(cfg.Path, segmentFileName("logs_"+itoa(i+1)))
		var seg map[string]json.RawMessage
		readJSONFile(t, segFile, &seg)
		require.Len(t, seg, 1, "segment %d must hold exactly one entry", i+1)
		assert.Contains(t, seg, id)
	}
}

func itoa(n int) string { return string(rune('0' + n)) }

func TestRotationKeepsIndexComplete(t *testing.T) {
	cfg := testConfig(t)
	cfg.RotationBytes = 1
	engine := New(cfg)

	var ids []string
	for i := 0; i < 5; i++ {
		entry := testEntry(map[string]any{"n": float64(i)})
		ids = append(ids, entry.ID)
		require.NoError(t, engine.CaptureEntry(entry))
	}

	var idx map[string]string
	readJSONFile(t, filepath.Join(cfg.Path, "index.json"), &idx)
	require.Len(t, idx, 5, "index entries are appended, never removed")
	for i, id := range ids {
		locator, ok := idx[id]
		require.True(t, ok, "id %s missing from index", id)
		assert.Equal(t, "logs_"+itoa(i+1), locator, "locator must name the owning segment")
	}
}

func TestNoRotationUnderThreshold(t *testing.T) {
	cfg := testConfig(t)
	cfg.RotationBytes = 1 << 20
	engine := New(cfg)

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.CaptureEntry(testEntry(map[string]any{"n": float64(i)})))
	}

	var seg map[string]json.RawMessage
	readJSONFile(t, filepath.Join(cfg.Path, "logs_0.json"), &seg)
	assert.Len(t, seg, 3)
	_, err := os.Stat(filepath.Join(cfg.Path, "logs_1.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestNextSegmentName(t *testing.T) {
	next, err := nextSegmentName("logs_0")
	require.NoError(t, err)
	assert.Equal(t, "logs_1", next)

	next, err = nextSegmentName("logs_41")
	require.NoError(t, err)
	assert.Equal(t, "logs_42", next)

	_, err = nextSegmentName("logs_x")
	assert.Error(t, err)
	_, err = nextSegmentName("nodigits")
	assert.Error(t, err)
}

func TestMalformedSegmentNameSkipsRotation(t *testing.T) {
	engine := New(testConfig(t))
	seg := newSegment("broken")
	seg.append("id-1", json.RawMessage(`"v"`))

	engine.rotateIfNeeded(seg, 1<<30)

	assert.Equal(t, "broken", seg.name)
	assert.Len(t, seg.entries, 1)
}

func TestRetrieveRecoversFromCorruptSegment(t *testing.T) {
	cfg := testConfig(t)
	engine := New(cfg)
	require.NoError(t, os.MkdirAll(cfg.Path, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Path, "logs_0.json"), []byte("not json at all"), 0o600))

	entries, err := engine.Retrieve("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCaptureRecoversFromCorruptIndexAndConfig(t *testing.T) {
	cfg := testConfig(t)
	engine := New(cfg)
	require.NoError(t, os.MkdirAll(cfg.Path, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Path, "index.json"), []byte("[1,2,3]"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Path, "config.json"), []byte(`{"wrong":"shape"}`), 0o600))

	entry := testEntry(map[string]any{"k": "v"})
	require.NoError(t, engine.CaptureEntry(entry))

	var idx map[string]string
	readJSONFile(t, filepath.Join(cfg.Path, "index.json"), &idx)
	assert.Equal(t, map[string]string{entry.ID: "logs_0"}, idx)

	var snap map[string]bool
	readJSONFile(t, filepath.Join(cfg.Path, "config.json"), &snap)
	_, ok := snap["disableBinary"]
	assert.True(t, ok, "snapshot must be rewritten with its expected field")
}

func TestBootstrapFatality(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	cfg := Config{
		// A regular file sits where a parent directory is needed, so the
		// storage root cannot be created and config.json is unwritable.
		Path:    filepath.Join(blocker, "store"),
		Capture: capture.DefaultOptions(),
		Logger:  logging.Nop(),
	}
	engine := New(cfg)

	err := engine.CaptureEntry(testEntry(map[string]any{"k": "v"}))
	require.Error(t, err)

	var fatal *CannotCreateFileError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, "config.json", fatal.Name)
	assert.Contains(t, err.Error(), "config.json")
}

func TestSnapshotSelfDescribing(t *testing.T) {
	cfg := testConfig(t)
	cfg.DisableBinary = true
	writer := New(cfg)

	entry := testEntry(map[string]any{"user": "ana"})
	require.NoError(t, writer.CaptureEntry(entry))

	// A second session configured for binary mode must follow the persisted
	// snapshot, not its own configuration.
	cfg2 := cfg
	cfg2.DisableBinary = false
	reader := New(cfg2)

	entries, err := reader.Retrieve("")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ana", entries[0].Body["user"])

	var snap map[string]bool
	readJSONFile(t, filepath.Join(cfg.Path, "config.json"), &snap)
	assert.True(t, snap["disableBinary"])
}

func TestEndToEndObfuscation(t *testing.T) {
	modes := map[string]func(*Config){
		"default": func(cfg *Config) {},
		"binary":  func(cfg *Config) { cfg.DisableBinary = false },
		"text":    func(cfg *Config) { cfg.DisableBinary = true },
	}

	for name, apply := range modes {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Capture.Obfuscate = []string{"password"}
			apply(&cfg)
			engine := New(cfg)

			secret := testEntry(map[string]any{"password": "x", "q": "y"})
			require.NoError(t, engine.CaptureEntry(secret))
			require.NoError(t, engine.CaptureEntry(testEntry(map[string]any{"a": "1"})))
			require.NoError(t, engine.CaptureEntry(testEntry(map[string]any{"b": "2"})))

			entries, err := engine.Retrieve("")
			require.NoError(t, err)
			require.Len(t, entries, 3)

			var found bool
			for _, got := range entries {
				if got.ID != secret.ID {
					continue
				}
				found = true
				assert.Equal(t, capture.RedactedValue, got.Body["password"])
				assert.Equal(t, "y", got.Body["q"])
			}
			assert.True(t, found)
		})
	}
}

func TestCaptureFromHTTPRequest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Capture.Obfuscate = []string{"token"}
	engine := New(cfg)

	req := httptest.NewRequest("POST", "/auth?src=web", strings.NewReader(`{"token":"abc","user":"ana"}`))
	req.RemoteAddr = "192.0.2.5:1234"
	require.NoError(t, engine.Capture(req))

	entries, err := engine.Retrieve("")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "192.0.2.5", got.IP)
	assert.Equal(t, "web", got.QueryParams["src"])
	assert.Equal(t, capture.RedactedValue, got.Body["token"])
	assert.Equal(t, "ana", got.Body["user"])
}

func TestLocateAndSegments(t *testing.T) {
	cfg := testConfig(t)
	cfg.RotationBytes = 1
	engine := New(cfg)

	first := testEntry(map[string]any{"n": float64(0)})
	second := testEntry(map[string]any{"n": float64(1)})
	require.NoError(t, engine.CaptureEntry(first))
	require.NoError(t, engine.CaptureEntry(second))

	locator, ok := engine.Locate(first.ID)
	require.True(t, ok)
	assert.Equal(t, "logs_1", locator)

	locator, ok = engine.Locate(second.ID)
	require.True(t, ok)
	assert.Equal(t, "logs_2", locator)

	_, ok = engine.Locate("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"logs_0", "logs_1", "logs_2"}, engine.Segments())
}
