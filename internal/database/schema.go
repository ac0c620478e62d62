package database

import "fmt"

// Timestamps are unix seconds. shared_with columns hold a JSON array of user
// ids; containment checks go through json_each, never substring matching.
func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			handle TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL,
			expires_at INTEGER,
			last_seen_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS todo_lists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_by TEXT NOT NULL REFERENCES users(id),
			shared_with TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS todos (
			id TEXT PRIMARY KEY,
			list_id TEXT,
			title TEXT NOT NULL,
			notes TEXT,
			done INTEGER NOT NULL DEFAULT 0,
			due_at INTEGER,
			remind_at INTEGER,
			remind_sent_at INTEGER,
			assigned_to TEXT,
			shared_with TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			deleted_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS note_groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_by TEXT NOT NULL REFERENCES users(id),
			shared_with TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			group_id TEXT,
			title TEXT NOT NULL,
			body_md TEXT NOT NULL DEFAULT '',
			shared_with TEXT NOT NULL DEFAULT '[]',
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			deleted_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS note_shares (
			token TEXT PRIMARY KEY,
			note_id TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
			created_by TEXT NOT NULL REFERENCES users(id),
			can_edit INTEGER NOT NULL DEFAULT 1,
			expires_at INTEGER,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outbox_notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			click_url TEXT,
			priority INTEGER,
			tags TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'pending',
			last_error TEXT,
			created_at INTEGER NOT NULL,
			sent_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_todos_list_id ON todos(list_id)`,
		`CREATE INDEX IF NOT EXISTS idx_todos_remind_at ON todos(remind_at) WHERE remind_sent_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_notes_group_id ON notes(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_user_id ON outbox_notifications(user_id)`,
	}

	for _, q := range queries {
		if _, err := d.conn.Exec(q); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}
