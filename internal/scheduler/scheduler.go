// Package scheduler polls the store for due reminders and drives notification
// delivery. At-least-once: a todo is marked reminded only when every recipient
// delivery succeeded; otherwise remind_at is pushed forward and the whole
// recipient set is retried.
package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/truedezigner/notch/internal/config"
	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
	"github.com/truedezigner/notch/internal/ntfy"
)

// Notifier is the delivery collaborator; failures surface as errors and are
// never retried by the notifier itself.
type Notifier interface {
	TopicForHandle(handle string) string
	Publish(ctx context.Context, m ntfy.Message) error
}

type Scheduler struct {
	db       *database.DB
	cfg      config.SchedulerConfig
	baseURL  string
	notifier Notifier
	log      *slog.Logger

	now func() int64
}

func New(db *database.DB, cfg config.SchedulerConfig, baseURL string, n Notifier, log *slog.Logger) *Scheduler {
	return &Scheduler{
		db:       db,
		cfg:      cfg,
		baseURL:  strings.TrimRight(baseURL, "/"),
		notifier: n,
		log:      log,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// Run polls until ctx is cancelled. A failing tick is logged and the loop
// continues on its normal interval.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("reminder scheduler disabled")
		return
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.log.Info("reminder scheduler started", "interval", s.cfg.PollInterval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			processed, failed, err := s.RunOnce(ctx)
			if err != nil {
				s.log.Error("scheduler tick failed", "error", err)
				continue
			}
			if processed > 0 {
				s.log.Info("scheduler tick", "processed", processed, "failed", failed)
			}
		}
	}
}

type dueTodo struct {
	id         string
	title      string
	assignedTo *string
	sharedWith models.StringList
}

// RunOnce processes one batch of due reminders. Returns the number of todos
// attempted and how many had at least one failed delivery.
func (s *Scheduler) RunOnce(ctx context.Context) (processed, failed int, err error) {
	if !s.cfg.Enabled {
		return 0, 0, nil
	}

	now := s.now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, assigned_to, shared_with FROM todos
		 WHERE done = 0
		   AND deleted_at IS NULL
		   AND remind_at IS NOT NULL
		   AND remind_at <= ?
		   AND remind_sent_at IS NULL
		 ORDER BY remind_at ASC
		 LIMIT ?`,
		now, s.cfg.BatchSize)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	var due []dueTodo
	for rows.Next() {
		var t dueTodo
		if err := rows.Scan(&t.id, &t.title, &t.assignedTo, &t.sharedWith); err != nil {
			return 0, 0, err
		}
		due = append(due, t)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	for _, todo := range due {
		processed++
		anyError, err := s.notifyForTodo(ctx, todo)
		if err != nil {
			failed++
			s.log.Error("reminder dispatch failed", "todo_id", todo.id, "error", err)
			continue
		}
		if anyError {
			failed++
		}
	}
	return processed, failed, nil
}

// notifyForTodo fans a reminder out to the todo's recipient set. anyError is
// true when at least one delivery failed (the todo stays unreminded); err is
// a store failure.
func (s *Scheduler) notifyForTodo(ctx context.Context, todo dueTodo) (bool, error) {
	var recipients []string
	if todo.assignedTo != nil {
		recipients = append(recipients, *todo.assignedTo)
	}
	recipients = models.NormalizeIDSet(append(recipients, todo.sharedWith...))

	// Nobody to notify: mark sent so the batch query stops re-selecting it.
	if len(recipients) == 0 {
		_, err := s.db.ExecContext(ctx,
			"UPDATE todos SET remind_sent_at = ? WHERE id = ?", s.now(), todo.id)
		return false, err
	}

	handles, err := s.resolveHandles(ctx, recipients)
	if err != nil {
		return false, err
	}

	title := "Reminder"
	message := strings.TrimSpace(todo.title)
	if message == "" {
		message = "(untitled)"
	}
	click := s.baseURL + "/app/todos/" + todo.id

	anyError := false
	for _, uid := range recipients {
		handle, ok := handles[uid]
		if !ok {
			continue
		}
		if err := s.deliverTo(ctx, uid, handle, title, message, click); err != nil {
			anyError = true
		}
	}

	if anyError {
		// Leave remind_sent_at unset and push the reminder forward so the
		// batch query does not immediately re-select it.
		retryAt := s.now() + int64(s.cfg.RetryBackoff.Seconds())
		_, err := s.db.ExecContext(ctx,
			"UPDATE todos SET remind_at = ? WHERE id = ?", retryAt, todo.id)
		return true, err
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE todos SET remind_sent_at = ? WHERE id = ?", s.now(), todo.id)
	return false, err
}

// deliverTo records one outbox row and attempts one delivery. The outbox row
// always reflects the outcome; the returned error only signals "retry later".
func (s *Scheduler) deliverTo(ctx context.Context, userID, handle, title, message, click string) error {
	topic := s.notifier.TopicForHandle(handle)
	outboxID := uuid.NewString()
	tags := models.StringList{"todo"}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox_notifications (id, user_id, topic, title, message, click_url, priority, tags, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)`,
		outboxID, userID, topic, title, message, click, tags, models.OutboxPending, s.now()); err != nil {
		return err
	}

	err := s.notifier.Publish(ctx, ntfy.Message{
		Topic:    topic,
		Title:    title,
		Body:     message,
		ClickURL: click,
		Tags:     tags,
	})
	if err != nil {
		s.log.Warn("notification delivery failed", "topic", topic, "error", err)
		if _, uerr := s.db.ExecContext(ctx,
			"UPDATE outbox_notifications SET status = ?, last_error = ? WHERE id = ?",
			models.OutboxError, err.Error(), outboxID); uerr != nil {
			return uerr
		}
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE outbox_notifications SET status = ?, sent_at = ? WHERE id = ?",
		models.OutboxSent, s.now(), outboxID)
	return err
}

func (s *Scheduler) resolveHandles(ctx context.Context, userIDs []string) (map[string]string, error) {
	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, handle FROM users WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	handles := make(map[string]string, len(userIDs))
	for rows.Next() {
		var id, handle string
		if err := rows.Scan(&id, &handle); err != nil {
			return nil, err
		}
		handles[id] = handle
	}
	return handles, rows.Err()
}
