package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// JSONL file names, one per stored kind.
const (
	componentsJSONL    = "components.jsonl"
	entityTypesJSONL   = "entity_types.jsonl"
	relationTypesJSONL = "relation_types.jsonl"
	flowTypesJSONL     = "flow_types.jsonl"
)

// kindFiles maps each stored kind to its JSONL file. The order is the
// restore order: components before the types that reference them.
var kindFiles = []struct {
	kind types.Kind
	file string
}{
	{types.KindComponent, componentsJSONL},
	{types.KindEntityType, entityTypesJSONL},
	{types.KindRelationType, relationTypesJSONL},
	{types.KindFlowType, flowTypesJSONL},
}

func fileForKind(kind types.Kind) (string, bool) {
	for _, kf := range kindFiles {
		if kf.kind == kind {
			return kf.file, true
		}
	}
	return "", false
}

// recordJSON is one line of a kind file.
type recordJSON struct {
	TypeID    string          `json:"type_id"`
	Kind      string          `json:"kind"`
	Namespace string          `json:"namespace"`
	Name      string          `json:"name"`
	Record    json.RawMessage `json:"record"`
	UpdatedAt string          `json:"updated_at"`
}

// readJSONL reads a JSONL file and returns each non-empty line as a
// json.RawMessage. Lines are not validated here; the loader skips and counts
// the ones that do not decode.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err = w.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err = w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// initJSONLFiles creates empty kind files that do not exist yet.
func initJSONLFiles(dataDir string) error {
	for _, kf := range kindFiles {
		path := filepath.Join(dataDir, kf.file)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return err
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", kf.file, err)
		}
	}
	return nil
}
