package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// Schema creates the flag_definitions table. A NULL scheme means the default
// scheme.
const Schema = `
CREATE TABLE IF NOT EXISTS flag_definitions (
    env        TEXT             NOT NULL DEFAULT 'default',
    name       TEXT             NOT NULL,
    scheme     TEXT,
    enabled    DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ      NOT NULL DEFAULT now(),
    PRIMARY KEY (env, name)
)`

const (
	selectDefinitionsSQL = `
SELECT env, name, scheme, enabled
FROM flag_definitions
WHERE env = 'default' OR env = $1`

	upsertDefinitionSQL = `
INSERT INTO flag_definitions (env, name, scheme, enabled, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (env, name) DO UPDATE
SET scheme = EXCLUDED.scheme, enabled = EXCLUDED.enabled, updated_at = now()`

	deleteDefinitionSQL = `DELETE FROM flag_definitions WHERE env = $1 AND name = $2`
)

// PostgresStore reads flag definitions from PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	env  string
}

// NewPostgresStore creates a store reading env over "default" from pool.
// The store owns the pool and closes it on Close.
func NewPostgresStore(pool *pgxpool.Pool, env string) *PostgresStore {
	return &PostgresStore{pool: pool, env: env}
}

// Migrate creates the schema if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

type definitionRow struct {
	Env     string
	Name    string
	Scheme  pgtype.Text
	Enabled float64
}

// Load implements flags.Source.
func (p *PostgresStore) Load(ctx context.Context) (map[string]flags.Definition, error) {
	rows, err := p.pool.Query(ctx, selectDefinitionsSQL, p.env)
	if err != nil {
		return nil, fmt.Errorf("store: query definitions: %w", err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByPos[definitionRow])
	if err != nil {
		return nil, fmt.Errorf("store: scan definitions: %w", err)
	}

	base := make(map[string]flags.Definition)
	env := make(map[string]flags.Definition)
	for _, r := range collected {
		def := flags.Definition{Enabled: r.Enabled}
		if r.Scheme.Valid {
			def.Scheme = flags.Scheme(r.Scheme.String)
		}
		if r.Env == flags.BaseEnv {
			base[r.Name] = def
		} else {
			env[r.Name] = def
		}
	}
	return overlay(base, env), nil
}

// UpsertDefinition creates or replaces a definition.
func (p *PostgresStore) UpsertDefinition(ctx context.Context, env, name string, def flags.Definition) error {
	scheme := pgtype.Text{String: string(def.Scheme), Valid: def.Scheme != ""}
	if _, err := p.pool.Exec(ctx, upsertDefinitionSQL, env, name, scheme, def.Enabled); err != nil {
		return fmt.Errorf("store: upsert %s/%s: %w", env, name, err)
	}
	return nil
}

// DeleteDefinition removes a definition; a missing row is not an error.
func (p *PostgresStore) DeleteDefinition(ctx context.Context, env, name string) error {
	if _, err := p.pool.Exec(ctx, deleteDefinitionSQL, env, name); err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", env, name, err)
	}
	return nil
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
