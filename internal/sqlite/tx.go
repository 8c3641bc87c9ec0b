package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// withTx runs fn inside a SQL transaction. The multi-row ledger
// mutations depend on this: rows, event, and attack record either all
// commit or none do.
func withTx(ctx context.Context, db *DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
