package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/lattice/pkg/types"
	"github.com/mesh-intelligence/lattice/pkg/typesystem"
)

// Record is a stored type definition.
type Record struct {
	Type      types.TypeDefinition
	Data      json.RawMessage
	UpdatedAt time.Time
}

// Counts tallies definitions per kind for Store and Restore.
type Counts struct {
	Components    int
	EntityTypes   int
	RelationTypes int
	FlowTypes     int
	// Skipped counts stored records that Restore did not register because
	// the type system already had them.
	Skipped int
}

// Total returns the number of definitions stored or restored.
func (c Counts) Total() int {
	return c.Components + c.EntityTypes + c.RelationTypes + c.FlowTypes
}

func (c *Counts) add(kind types.Kind) {
	switch kind {
	case types.KindComponent:
		c.Components++
	case types.KindEntityType:
		c.EntityTypes++
	case types.KindRelationType:
		c.RelationTypes++
	case types.KindFlowType:
		c.FlowTypes++
	}
}

// pending is a definition encoded for storage.
type pending struct {
	def    types.TypeDefinition
	record []byte
}

func encode[T interface{ TypeDefinition() types.TypeDefinition }](out []pending, values []T) ([]pending, error) {
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", v.TypeDefinition(), err)
		}
		out = append(out, pending{def: v.TypeDefinition(), record: data})
	}
	return out, nil
}

// Store writes every definition registered in ts. Existing records with the
// same type id are overwritten; records of types not in ts are kept. The
// JSONL files are rewritten atomically afterwards.
func (b *Backend) Store(ts *typesystem.TypeSystem) (Counts, error) {
	var counts Counts
	var batch []pending
	var err error
	if batch, err = encode(batch, ts.Components().GetAll()); err != nil {
		return counts, fmt.Errorf("sqlite: store: %w", err)
	}
	if batch, err = encode(batch, ts.EntityTypes().GetAll()); err != nil {
		return counts, fmt.Errorf("sqlite: store: %w", err)
	}
	if batch, err = encode(batch, ts.RelationTypes().GetAll()); err != nil {
		return counts, fmt.Errorf("sqlite: store: %w", err)
	}
	if batch, err = encode(batch, ts.FlowTypes().GetAll()); err != nil {
		return counts, fmt.Errorf("sqlite: store: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return counts, ErrDetached
	}

	ctx := context.Background()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("sqlite: store: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range batch {
		if err := insertRecord(ctx, tx, p.def, p.record, now); err != nil {
			return Counts{}, fmt.Errorf("sqlite: store: %w", err)
		}
		counts.add(p.def.Kind)
	}
	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("sqlite: store: %w", err)
	}

	if err := b.persistLocked(ctx, kindsOf(batch)...); err != nil {
		return counts, err
	}
	b.logger.Debug("stored type definitions", "count", counts.Total())
	return counts, nil
}

func kindsOf(batch []pending) []types.Kind {
	seen := make(map[types.Kind]bool)
	var kinds []types.Kind
	for _, p := range batch {
		if !seen[p.def.Kind] {
			seen[p.def.Kind] = true
			kinds = append(kinds, p.def.Kind)
		}
	}
	return kinds
}

// Restore registers every stored definition into ts, components first.
// Definitions that ts already holds are skipped and counted. Records that
// fail to decode or register are reported together.
func (b *Backend) Restore(ts *typesystem.TypeSystem) (Counts, error) {
	var counts Counts
	var errs []error
	for _, kf := range kindFiles {
		records, err := b.List(kf.kind, types.Namespace{})
		if err != nil {
			return counts, err
		}
		for _, rec := range records {
			err := registerRecord(ts, rec)
			switch {
			case err == nil:
				counts.add(kf.kind)
			case errors.Is(err, typesystem.ErrTypeAlreadyExists):
				counts.Skipped++
			default:
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return counts, fmt.Errorf("sqlite: restore: %w", errors.Join(errs...))
	}
	return counts, nil
}

func registerRecord(ts *typesystem.TypeSystem, rec Record) error {
	var err error
	switch rec.Type.Kind {
	case types.KindComponent:
		var v types.Component
		if err = json.Unmarshal(rec.Data, &v); err == nil {
			_, err = ts.Components().Register(&v)
		}
	case types.KindEntityType:
		var v types.EntityType
		if err = json.Unmarshal(rec.Data, &v); err == nil {
			_, err = ts.EntityTypes().Register(&v)
		}
	case types.KindRelationType:
		var v types.RelationType
		if err = json.Unmarshal(rec.Data, &v); err == nil {
			_, err = ts.RelationTypes().Register(&v)
		}
	case types.KindFlowType:
		var v types.FlowType
		if err = json.Unmarshal(rec.Data, &v); err == nil {
			_, err = ts.FlowTypes().Register(&v)
		}
	default:
		err = ErrKindNotStored
	}
	if err != nil {
		return fmt.Errorf("%s: %w", rec.Type, err)
	}
	return nil
}

// Get returns the stored record of def.
func (b *Backend) Get(def types.TypeDefinition) (Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return Record{}, ErrDetached
	}

	row := b.db.QueryRow(`SELECT type_id, record, updated_at FROM type_definitions WHERE type_id = ?`, def.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, def)
	}
	return rec, err
}

// Delete removes the stored record of def and rewrites its kind file.
func (b *Backend) Delete(def types.TypeDefinition) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return ErrDetached
	}

	ctx := context.Background()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM component_refs WHERE type_id = ?`, def.String()); err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM type_definitions WHERE type_id = ?`, def.String())
	if err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, def)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	return b.persistLocked(ctx, def.Kind)
}

// List returns the stored records of kind sorted by type id. A zero
// namespace lists every namespace.
func (b *Backend) List(kind types.Kind, namespace types.Namespace) ([]Record, error) {
	if _, ok := fileForKind(kind); !ok {
		return nil, fmt.Errorf("%w: %s", ErrKindNotStored, kind)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, ErrDetached
	}
	return b.listLocked(context.Background(), kind, namespace)
}

func (b *Backend) listLocked(ctx context.Context, kind types.Kind, namespace types.Namespace) ([]Record, error) {
	query := `SELECT type_id, record, updated_at FROM type_definitions WHERE kind = ?`
	args := []any{kind.String()}
	if !namespace.IsZero() {
		query += ` AND namespace = ?`
		args = append(args, namespace.String())
	}
	query += ` ORDER BY namespace, name`

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list %s: %w", kind, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Referencing returns the entity and relation types that list component.
func (b *Backend) Referencing(component types.ComponentTypeID) ([]types.TypeDefinition, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, ErrDetached
	}

	rows, err := b.db.Query(`SELECT type_id FROM component_refs WHERE component_id = ? ORDER BY type_id`, component.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: referencing %s: %w", component, err)
	}
	defer rows.Close()

	var out []types.TypeDefinition
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: referencing %s: %w", component, err)
		}
		def, err := types.ParseTypeDefinition(id)
		if err != nil {
			return nil, fmt.Errorf("sqlite: referencing %s: %w", component, err)
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var id, data, updated string
	if err := s.Scan(&id, &data, &updated); err != nil {
		return Record{}, err
	}
	def, err := types.ParseTypeDefinition(id)
	if err != nil {
		return Record{}, fmt.Errorf("sqlite: stored type id %q: %w", id, err)
	}
	rec := Record{Type: def, Data: json.RawMessage(data)}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

// persistLocked rewrites the JSONL files of kinds from SQLite. The caller
// must hold b.mu.
func (b *Backend) persistLocked(ctx context.Context, kinds ...types.Kind) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		file, ok := fileForKind(kind)
		if !ok {
			continue
		}
		g.Go(func() error {
			records, err := b.listLocked(ctx, kind, types.Namespace{})
			if err != nil {
				return err
			}
			lines := make([]json.RawMessage, 0, len(records))
			for _, rec := range records {
				line, err := json.Marshal(recordJSON{
					TypeID:    rec.Type.String(),
					Kind:      rec.Type.Kind.String(),
					Namespace: rec.Type.Namespace().String(),
					Name:      rec.Type.TypeName(),
					Record:    rec.Data,
					UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
				})
				if err != nil {
					return err
				}
				lines = append(lines, line)
			}
			return writeJSONL(filepath.Join(b.config.DataDir, file), lines)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("sqlite: persist: %w", err)
	}
	return nil
}
