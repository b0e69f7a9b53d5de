// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nishadadilshan/customer-service/internal/config"
	"github.com/nishadadilshan/customer-service/internal/db"
)

// New returns a migrated in-memory SQLite database closed at test cleanup.
// The pool is pinned to one connection so every query sees the same memory DB.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(config.DBConfig{
		Driver:       db.DialectSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(context.Background(), conn, db.CustomerSchema))
	return conn
}
