package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hatworks/designer/internal/document"
)

// Schema creates the table PGSource reads. config holds the JSON of a
// document.HatType without id and name.
const Schema = `
CREATE TABLE IF NOT EXISTS hat_types (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	config     JSONB NOT NULL DEFAULT '{}',
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const (
	listHatTypes = `SELECT id, name, config FROM hat_types WHERE active ORDER BY id`
	getHatType   = `SELECT id, name, config FROM hat_types WHERE id = $1 AND active`
	upsertHat    = `
INSERT INTO hat_types (id, name, config) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, config = EXCLUDED.config, updated_at = now()`
)

type hatRow struct {
	ID     string `db:"id"`
	Name   string `db:"name"`
	Config []byte `db:"config"`
}

func (r hatRow) hatType() (document.HatType, error) {
	var h document.HatType
	if len(r.Config) > 0 {
		if err := json.Unmarshal(r.Config, &h); err != nil {
			return h, fmt.Errorf("parse config of hat %s: %w", r.ID, err)
		}
	}
	h.ID = r.ID
	h.Name = r.Name
	return h, nil
}

// PGSource reads hat types from Postgres.
type PGSource struct {
	pool *pgxpool.Pool
}

func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

// EnsureSchema creates the hat_types table if it does not exist.
func (s *PGSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create hat_types: %w", err)
	}
	return nil
}

func (s *PGSource) HatTypes(ctx context.Context) ([]document.HatType, error) {
	rows, err := s.pool.Query(ctx, listHatTypes)
	if err != nil {
		return nil, fmt.Errorf("query hat types: %w", err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[hatRow])
	if err != nil {
		return nil, fmt.Errorf("scan hat types: %w", err)
	}

	list := make([]document.HatType, 0, len(recs))
	for _, r := range recs {
		h, err := r.hatType()
		if err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, nil
}

// Get reads one active hat type.
func (s *PGSource) Get(ctx context.Context, id string) (document.HatType, error) {
	var r hatRow
	err := s.pool.QueryRow(ctx, getHatType, id).Scan(&r.ID, &r.Name, &r.Config)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.HatType{}, fmt.Errorf("%w: %s", ErrUnknownHat, id)
		}
		return document.HatType{}, fmt.Errorf("get hat type: %w", err)
	}
	return r.hatType()
}

// Save inserts or replaces a hat type.
func (s *PGSource) Save(ctx context.Context, h document.HatType) error {
	id, name := h.ID, h.Name
	h.ID, h.Name = "", ""
	config, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal hat config: %w", err)
	}
	if _, err := s.pool.Exec(ctx, upsertHat, id, name, config); err != nil {
		return fmt.Errorf("save hat type: %w", err)
	}
	return nil
}
