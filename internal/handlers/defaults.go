package handlers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
)

// Every user gets exactly one "Inbox" list and one "General" note group,
// created lazily on first access. Name match is case-insensitive.

func ensureDefaultList(ctx context.Context, db *database.DB, userID string) (*models.TodoList, error) {
	var list *models.TodoList
	err := db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+listColumns+" FROM todo_lists WHERE created_by = ? AND lower(name) = lower(?) LIMIT 1",
			userID, "Inbox")
		l, err := scanList(row)
		if err == nil {
			list = l
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		id := uuid.NewString()
		t := now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todo_lists (id, name, created_by, shared_with, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, "Inbox", userID, models.StringList{}, t, t); err != nil {
			return err
		}
		row = tx.QueryRowContext(ctx, "SELECT "+listColumns+" FROM todo_lists WHERE id = ?", id)
		list, err = scanList(row)
		return err
	})
	return list, err
}

func ensureDefaultGroup(ctx context.Context, db *database.DB, userID string) (*models.NoteGroup, error) {
	var group *models.NoteGroup
	err := db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		row := tx.QueryRowContext(ctx,
			"SELECT "+groupColumns+" FROM note_groups WHERE created_by = ? AND lower(name) = lower(?) LIMIT 1",
			userID, "General")
		g, err := scanGroup(row)
		if err == nil {
			group = g
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		id := uuid.NewString()
		t := now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_groups (id, name, created_by, shared_with, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, "General", userID, models.StringList{}, t, t); err != nil {
			return err
		}
		row = tx.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM note_groups WHERE id = ?", id)
		group, err = scanGroup(row)
		return err
	})
	return group, err
}
