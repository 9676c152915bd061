package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/knowledge-analyzer/internal/config"
	domain "github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
	mysqlp "github.com/bryanwahyu/knowledge-analyzer/internal/infra/db/mysql"
	"github.com/bryanwahyu/knowledge-analyzer/internal/infra/db/postgres"
	"github.com/bryanwahyu/knowledge-analyzer/internal/infra/db/sqlite"
)

// Open connects to the configured driver and returns the pool with its
// analysis repository. The caller closes the pool.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, domain.Repository, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite, "":
		db, err := sqlite.Connect(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.NewAnalysisRepository(db, nil), nil
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return db, mysqlp.NewAnalysisRepository(db), nil
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return db, postgres.NewAnalysisRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
