package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/lattice/pkg/types"
)

// componentRefs is the part of an entity or relation type record that lists
// its components.
type componentRefs struct {
	Components []string `json:"components"`
}

// loadAllJSONL reads every kind file from dataDir concurrently and inserts
// the records into SQLite in one transaction: all succeed or the database
// remains empty. Malformed lines, records whose type id does not parse and
// records filed under the wrong kind are skipped and counted. Unknown fields
// are ignored.
func loadAllJSONL(ctx context.Context, db *sql.DB, dataDir string) (skipped int, err error) {
	lines := make([][]json.RawMessage, len(kindFiles))
	g, _ := errgroup.WithContext(ctx)
	for i, kf := range kindFiles {
		g.Go(func() error {
			recs, err := readJSONL(filepath.Join(dataDir, kf.file))
			if err != nil {
				return err
			}
			lines[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for i, kf := range kindFiles {
		for _, line := range lines[i] {
			var rec recordJSON
			if err := json.Unmarshal(line, &rec); err != nil {
				skipped++
				continue
			}
			def, err := types.ParseTypeDefinition(rec.TypeID)
			if err != nil || def.Kind != kf.kind || len(rec.Record) == 0 {
				skipped++
				continue
			}
			if err := insertRecord(ctx, tx, def, rec.Record, rec.UpdatedAt); err != nil {
				return 0, fmt.Errorf("loading %s into type_definitions: %w", kf.file, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return skipped, nil
}

// insertRecord upserts one definition and its component references.
func insertRecord(ctx context.Context, tx *sql.Tx, def types.TypeDefinition, record json.RawMessage, updatedAt string) error {
	id := def.String()
	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO type_definitions (type_id, kind, namespace, name, record, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, def.Kind.String(), def.Namespace().String(), def.TypeName(), string(record), updatedAt)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM component_refs WHERE type_id = ?`, id); err != nil {
		return fmt.Errorf("clearing component refs of %s: %w", id, err)
	}
	if def.Kind != types.KindEntityType && def.Kind != types.KindRelationType {
		return nil
	}
	var refs componentRefs
	if err := json.Unmarshal(record, &refs); err != nil {
		return fmt.Errorf("decoding components of %s: %w", id, err)
	}
	for _, c := range refs.Components {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO component_refs (type_id, component_id) VALUES (?, ?)`, id, c); err != nil {
			return fmt.Errorf("inserting component ref %s of %s: %w", c, id, err)
		}
	}
	return nil
}
