package handlers

import "github.com/truedezigner/notch/internal/models"

// Column lists are kept next to their scan functions so the two cannot drift.

const listColumns = "id, name, created_by, shared_with, created_at, updated_at"

func scanList(s scanner) (*models.TodoList, error) {
	var l models.TodoList
	err := s.Scan(&l.ID, &l.Name, &l.CreatedBy, &l.SharedWith, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const groupColumns = "id, name, created_by, shared_with, created_at, updated_at"

func scanGroup(s scanner) (*models.NoteGroup, error) {
	var g models.NoteGroup
	err := s.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.SharedWith, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const todoColumns = "id, list_id, title, notes, done, due_at, remind_at, remind_sent_at, assigned_to, shared_with, created_by, created_at, updated_at, version, deleted_at"

func scanTodo(s scanner) (*models.Todo, error) {
	var t models.Todo
	var done int64
	err := s.Scan(&t.ID, &t.ListID, &t.Title, &t.Notes, &done, &t.DueAt, &t.RemindAt,
		&t.RemindSentAt, &t.AssignedTo, &t.SharedWith, &t.CreatedBy, &t.CreatedAt,
		&t.UpdatedAt, &t.Version, &t.DeletedAt)
	if err != nil {
		return nil, err
	}
	t.Done = done != 0
	return &t, nil
}

const noteColumns = "id, group_id, title, body_md, shared_with, created_by, created_at, updated_at, version, deleted_at"

func scanNote(s scanner) (*models.Note, error) {
	var n models.Note
	err := s.Scan(&n.ID, &n.GroupID, &n.Title, &n.BodyMD, &n.SharedWith, &n.CreatedBy,
		&n.CreatedAt, &n.UpdatedAt, &n.Version, &n.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const shareColumns = "token, note_id, created_by, can_edit, expires_at, created_at"

func scanShare(s scanner) (*models.NoteShare, error) {
	var sh models.NoteShare
	var canEdit int64
	err := s.Scan(&sh.Token, &sh.NoteID, &sh.CreatedBy, &canEdit, &sh.ExpiresAt, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}
	sh.CanEdit = canEdit != 0
	return &sh, nil
}

const outboxColumns = "id, user_id, topic, title, message, click_url, priority, tags, status, last_error, created_at, sent_at"

func scanOutbox(s scanner) (*models.OutboxNotification, error) {
	var o models.OutboxNotification
	err := s.Scan(&o.ID, &o.UserID, &o.Topic, &o.Title, &o.Message, &o.ClickURL,
		&o.Priority, &o.Tags, &o.Status, &o.LastError, &o.CreatedAt, &o.SentAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
