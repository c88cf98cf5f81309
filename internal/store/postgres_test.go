package store

import (
	"context"
	"os"
	"testing"

	mydb "github.com/TimurManjosov/bucketflags/internal/db"
	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// newTestPostgresStore connects to TEST_DATABASE_DSN or skips.
func newTestPostgresStore(t *testing.T, env string) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	pool, err := mydb.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	st := NewPostgresStore(pool, env)
	t.Cleanup(func() { _ = st.Close() })

	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE flag_definitions"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return st
}

func TestPostgresStore_LoadWithOverlay(t *testing.T) {
	st := newTestPostgresStore(t, "staging")
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(st.UpsertDefinition(ctx, flags.BaseEnv, "a", flags.Definition{Scheme: flags.SchemeRandom, Enabled: 0.5}))
	must(st.UpsertDefinition(ctx, flags.BaseEnv, "b", flags.Definition{Enabled: 0.2}))
	must(st.UpsertDefinition(ctx, "staging", "a", flags.Definition{Scheme: flags.SchemeSession, Enabled: 1}))
	must(st.UpsertDefinition(ctx, "prod", "c", flags.Definition{Scheme: flags.SchemeRandom, Enabled: 1}))

	defs, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("Expected 2 definitions, got %v", defs)
	}
	if defs["a"].Scheme != flags.SchemeSession || defs["a"].Enabled != 1 {
		t.Errorf("Expected staging override, got %+v", defs["a"])
	}
	if defs["b"].Scheme != "" {
		t.Errorf("Expected NULL scheme to load as unset, got %q", defs["b"].Scheme)
	}

	must(st.DeleteDefinition(ctx, "staging", "a"))
	defs, _ = st.Load(ctx)
	if defs["a"].Scheme != flags.SchemeRandom {
		t.Errorf("Expected default after delete, got %+v", defs["a"])
	}
}
