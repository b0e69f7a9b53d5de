package db

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

// ExecFile runs the SQL in path as a single transaction.
func ExecFile(ctx context.Context, db *sqlx.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to begin %s", path)
	}
	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "failed to execute %s", path)
	}
	return tx.Commit()
}
