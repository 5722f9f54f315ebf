package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, componentsJSONL)
	records := []json.RawMessage{
		json.RawMessage(`{"type_id":"c__core__A"}`),
		json.RawMessage(`{"type_id":"c__core__B"}`),
	}

	require.NoError(t, writeJSONL(path, records))
	got, err := readJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are renamed away")
	assert.Equal(t, componentsJSONL, entries[0].Name())

	require.NoError(t, writeJSONL(path, nil))
	got, err = readJSONL(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadJSONLSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), entityTypesJSONL)
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n\n{\"b\":2}\n"), 0o644))

	got, err := readJSONL(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestInitJSONLFilesKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, flowTypesJSONL)
	require.NoError(t, os.WriteFile(existing, []byte("{}\n"), 0o644))

	require.NoError(t, initJSONLFiles(dir))
	for _, kf := range kindFiles {
		assert.FileExists(t, filepath.Join(dir, kf.file))
	}
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestFileForKind(t *testing.T) {
	for _, kf := range kindFiles {
		file, ok := fileForKind(kf.kind)
		assert.True(t, ok)
		assert.Equal(t, kf.file, file)
	}
}

func openLoadDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "load.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(strings.Join(append(append([]string{}, schemaDDL...), indexDDL...), "\n"))
	require.NoError(t, err)
	return db
}

func TestLoadAllJSONLSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, initJSONLFiles(dir))

	components := strings.Join([]string{
		`{"type_id":"c__core__Named","record":{"type":"c__core__Named"},"updated_at":"2026-01-02T03:04:05Z"}`,
		`not json`,
		`{"type_id":"e__demo__Widget","record":{"type":"e__demo__Widget"}}`,
		`{"type_id":"c__bad","record":{}}`,
		`{"type_id":"c__core__Empty"}`,
	}, "\n")
	entities := `{"type_id":"e__demo__Widget","record":{"type":"e__demo__Widget","components":["c__core__Named"]},"updated_at":"2026-01-02T03:04:05Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, componentsJSONL), []byte(components+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, entityTypesJSONL), []byte(entities+"\n"), 0o644))

	db := openLoadDB(t)
	skipped, err := loadAllJSONL(context.Background(), db, dir)
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM type_definitions`).Scan(&n))
	assert.Equal(t, 2, n)

	var ref string
	require.NoError(t, db.QueryRow(
		`SELECT component_id FROM component_refs WHERE type_id = ?`, "e__demo__Widget").Scan(&ref))
	assert.Equal(t, "c__core__Named", ref)
}

func TestLoadAllJSONLMissingFile(t *testing.T) {
	dir := t.TempDir()
	db := openLoadDB(t)
	_, err := loadAllJSONL(context.Background(), db, dir)
	assert.Error(t, err)
}
