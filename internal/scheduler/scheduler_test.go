package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truedezigner/notch/internal/config"
	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
	"github.com/truedezigner/notch/internal/ntfy"
)

type fakeNotifier struct {
	published  []ntfy.Message
	failTopics map[string]bool
}

func (f *fakeNotifier) TopicForHandle(handle string) string {
	return "notch-" + strings.ToLower(handle)
}

func (f *fakeNotifier) Publish(_ context.Context, m ntfy.Message) error {
	if f.failTopics[m.Topic] {
		return errors.New("push endpoint unavailable")
	}
	f.published = append(f.published, m)
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *database.DB, *fakeNotifier) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	notifier := &fakeNotifier{failTopics: map[string]bool{}}
	cfg := config.SchedulerConfig{
		Enabled:      true,
		BatchSize:    25,
		RetryBackoff: 30 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(db, cfg, "http://app", notifier, logger)
	s.now = func() int64 { return 1000 }
	return s, db, notifier
}

func insertUser(t *testing.T, db *database.DB, id, handle string) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO users (id, handle, display_name, password_hash, created_at, updated_at) VALUES (?, ?, ?, 'x', 1, 1)",
		id, handle, handle)
	require.NoError(t, err)
}

type todoRow struct {
	id         string
	title      string
	done       bool
	remindAt   *int64
	assignedTo *string
	sharedWith models.StringList
	deletedAt  *int64
}

func insertTodo(t *testing.T, db *database.DB, r todoRow) {
	t.Helper()
	done := 0
	if r.done {
		done = 1
	}
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO todos (id, list_id, title, done, remind_at, assigned_to, shared_with, created_by, created_at, updated_at, version, deleted_at)
		 VALUES (?, 'l1', ?, ?, ?, ?, ?, 'u1', 1, 1, 1, ?)`,
		r.id, r.title, done, r.remindAt, r.assignedTo, r.sharedWith, r.deletedAt)
	require.NoError(t, err)
}

func i64(v int64) *int64   { return &v }
func str(v string) *string { return &v }

func remindSentAt(t *testing.T, db *database.DB, id string) *int64 {
	t.Helper()
	var v *int64
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT remind_sent_at FROM todos WHERE id = ?", id).Scan(&v))
	return v
}

func remindAt(t *testing.T, db *database.DB, id string) *int64 {
	t.Helper()
	var v *int64
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT remind_at FROM todos WHERE id = ?", id).Scan(&v))
	return v
}

func outboxRows(t *testing.T, db *database.DB) []models.OutboxNotification {
	t.Helper()
	rows, err := db.QueryContext(context.Background(),
		"SELECT id, user_id, topic, status, last_error, sent_at FROM outbox_notifications ORDER BY user_id")
	require.NoError(t, err)
	defer rows.Close()

	var out []models.OutboxNotification
	for rows.Next() {
		var o models.OutboxNotification
		require.NoError(t, rows.Scan(&o.ID, &o.UserID, &o.Topic, &o.Status, &o.LastError, &o.SentAt))
		out = append(out, o)
	}
	return out
}

func TestRunOnceDisabled(t *testing.T) {
	s, db, _ := newTestScheduler(t)
	s.cfg.Enabled = false
	insertUser(t, db, "u1", "alice")
	insertTodo(t, db, todoRow{id: "t1", title: "x", remindAt: i64(500)})

	processed, failed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, failed)
}

func TestRunOnceEmptyRecipientsMarksSent(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	insertUser(t, db, "u1", "alice")
	insertTodo(t, db, todoRow{id: "t1", title: "solo", remindAt: i64(500)})

	processed, failed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Zero(t, failed)

	assert.NotNil(t, remindSentAt(t, db, "t1"), "un-notifiable todo must not re-poll forever")
	assert.Empty(t, notifier.published)
	assert.Empty(t, outboxRows(t, db))
}

func TestRunOnceDeliversToAssignee(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	insertUser(t, db, "u1", "alice")
	insertUser(t, db, "u2", "bob")
	insertTodo(t, db, todoRow{id: "t1", title: "walk the dog", remindAt: i64(500), assignedTo: str("u2")})

	processed, failed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Zero(t, failed)

	require.Len(t, notifier.published, 1)
	assert.Equal(t, "notch-bob", notifier.published[0].Topic)
	assert.Equal(t, "Reminder", notifier.published[0].Title)
	assert.Equal(t, "walk the dog", notifier.published[0].Body)
	assert.Equal(t, "http://app/app/todos/t1", notifier.published[0].ClickURL)

	rows := outboxRows(t, db)
	require.Len(t, rows, 1)
	assert.Equal(t, "u2", rows[0].UserID)
	assert.Equal(t, models.OutboxSent, rows[0].Status)
	assert.NotNil(t, rows[0].SentAt)

	assert.NotNil(t, remindSentAt(t, db, "t1"))
}

func TestRunOnceFailureDefersRetry(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	insertUser(t, db, "u1", "alice")
	insertUser(t, db, "u2", "bob")
	insertTodo(t, db, todoRow{id: "t1", title: "x", remindAt: i64(500), assignedTo: str("u2")})
	notifier.failTopics["notch-bob"] = true

	processed, failed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, failed)

	rows := outboxRows(t, db)
	require.Len(t, rows, 1)
	assert.Equal(t, models.OutboxError, rows[0].Status)
	require.NotNil(t, rows[0].LastError)
	assert.Contains(t, *rows[0].LastError, "unavailable")
	assert.Nil(t, rows[0].SentAt)

	assert.Nil(t, remindSentAt(t, db, "t1"), "failed delivery must stay unreminded")
	// Pushed forward by the retry backoff so the batch query skips it.
	assert.Equal(t, i64(1030), remindAt(t, db, "t1"))
}

func TestRunOncePartialFailureRedeliversAll(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	insertUser(t, db, "u1", "alice")
	insertUser(t, db, "u2", "bob")
	insertUser(t, db, "u3", "carol")
	insertTodo(t, db, todoRow{
		id: "t1", title: "x", remindAt: i64(500),
		assignedTo: str("u2"), sharedWith: models.StringList{"u3"},
	})
	notifier.failTopics["notch-carol"] = true

	_, failed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	rows := outboxRows(t, db)
	require.Len(t, rows, 2)
	byUser := map[string]string{}
	for _, r := range rows {
		byUser[r.UserID] = r.Status
	}
	assert.Equal(t, models.OutboxSent, byUser["u2"])
	assert.Equal(t, models.OutboxError, byUser["u3"])

	// Partial success still defers: the whole recipient set retries later.
	assert.Nil(t, remindSentAt(t, db, "t1"))

	// Retry after the backoff reaches both recipients again.
	notifier.failTopics = map[string]bool{}
	s.now = func() int64 { return 2000 }
	_, failed, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.NotNil(t, remindSentAt(t, db, "t1"))
	assert.Len(t, outboxRows(t, db), 4, "redelivery appends new ledger rows")
}

func TestRunOnceSkipsIneligibleTodos(t *testing.T) {
	s, db, notifier := newTestScheduler(t)
	insertUser(t, db, "u1", "alice")
	insertUser(t, db, "u2", "bob")

	insertTodo(t, db, todoRow{id: "done", title: "x", done: true, remindAt: i64(500), assignedTo: str("u2")})
	insertTodo(t, db, todoRow{id: "future", title: "x", remindAt: i64(9999), assignedTo: str("u2")})
	insertTodo(t, db, todoRow{id: "trashed", title: "x", remindAt: i64(500), assignedTo: str("u2"), deletedAt: i64(600)})
	insertTodo(t, db, todoRow{id: "no-reminder", title: "x", assignedTo: str("u2")})

	processed, _, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Empty(t, notifier.published)
}

func TestRunOnceBatchLimit(t *testing.T) {
	s, db, _ := newTestScheduler(t)
	s.cfg.BatchSize = 2
	insertUser(t, db, "u1", "alice")
	insertTodo(t, db, todoRow{id: "a", title: "x", remindAt: i64(100)})
	insertTodo(t, db, todoRow{id: "b", title: "x", remindAt: i64(200)})
	insertTodo(t, db, todoRow{id: "c", title: "x", remindAt: i64(300)})

	processed, _, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	// Earliest reminders first.
	assert.NotNil(t, remindSentAt(t, db, "a"))
	assert.NotNil(t, remindSentAt(t, db, "b"))
	assert.Nil(t, remindSentAt(t, db, "c"))
}
