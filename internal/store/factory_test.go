package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/TimurManjosov/bucketflags/internal/config"
	"github.com/TimurManjosov/bucketflags/internal/flags"
)

func TestNewSource_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.toml")
	content := "[default.flags.a]\nscheme = \"random\"\nenabled = 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		FlagsSource:    config.SourceFile,
		FlagsFiles:     []string{path},
		FlagsEnv:       flags.BaseEnv,
		FlagsEnvPrefix: "BUCKETFLAGS_TEST_UNUSED",
	}
	src, err := NewSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	defer src.Close()

	reg, err := flags.LoadRegistry(context.Background(), src)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if def, ok := reg.Get("a"); !ok || def.Enabled != 0.5 {
		t.Errorf("Unexpected definition: %+v (ok=%v)", def, ok)
	}
}

func TestNewSource_Postgres_InvalidDSN(t *testing.T) {
	cfg := &config.Config{FlagsSource: config.SourcePostgres, DatabaseDSN: "not a dsn ::"}
	if _, err := NewSource(context.Background(), cfg); err == nil {
		t.Error("Expected error for invalid DSN")
	}
}

func TestNewSource_Unsupported(t *testing.T) {
	cfg := &config.Config{FlagsSource: "consul"}
	if _, err := NewSource(context.Background(), cfg); err == nil {
		t.Error("Expected error for unsupported source")
	}
}
