package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewAppliesSchema(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{
		"users", "sessions", "todo_lists", "todos",
		"note_groups", "notes", "note_shares", "outbox_notifications",
	} {
		var name string
		err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s missing", table)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.migrate())
}

func TestWithTxCommit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO users (id, handle, display_name, password_hash, created_at, updated_at) VALUES ('u1', 'alice', 'Alice', 'x', 1, 1)")
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO users (id, handle, display_name, password_hash, created_at, updated_at) VALUES ('u1', 'alice', 'Alice', 'x', 1, 1)"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 0, n, "insert must not survive a failed transaction")
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = db.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO users (id, handle, display_name, password_hash, created_at, updated_at) VALUES ('u1', 'alice', 'Alice', 'x', 1, 1)"); err != nil {
				return err
			}
			panic("boom")
		})
	})

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 0, n)
}
