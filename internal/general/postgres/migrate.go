package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"caby/internal/general/logger"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema on startup. Statements are written to
// be idempotent (IF NOT EXISTS), so re-running on every boot is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	logger.Info(ctx, "db_migrated", "Database schema is up to date", nil)
	return nil
}
