package store

import (
	"context"
	"fmt"

	"github.com/TimurManjosov/bucketflags/internal/config"
	mydb "github.com/TimurManjosov/bucketflags/internal/db"
	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// NewSource creates the flag source selected by cfg.FlagsSource.
func NewSource(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.FlagsSource {
	case config.SourceFile:
		return fileSource{flags.FileSource{
			Files:     cfg.FlagsFiles,
			Env:       cfg.FlagsEnv,
			EnvPrefix: cfg.FlagsEnvPrefix,
		}}, nil
	case config.SourcePostgres:
		pool, err := mydb.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		return NewPostgresStore(pool, cfg.FlagsEnv), nil
	default:
		return nil, fmt.Errorf("unsupported flags source: %s", cfg.FlagsSource)
	}
}
