// Package migrate owns the persisted layout of the url mapping table.
package migrate

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var PostgresSchema string

//go:embed schema_sqlite.sql
var SQLiteSchema string

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres creates the urls table and its indexes when absent.
// Safe to run on every startup.
func Postgres(ctx context.Context, conn Execer) error {
	if _, err := conn.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}
