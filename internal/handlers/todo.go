package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
	"github.com/truedezigner/notch/internal/policy"
)

type TodoHandler struct {
	db        *database.DB
	validator *validator.Validate
}

func NewTodoHandler(db *database.DB) *TodoHandler {
	return &TodoHandler{
		db:        db,
		validator: validator.New(),
	}
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing title"})
		return
	}

	var notes *string
	if req.Notes != nil {
		if v := strings.TrimSpace(*req.Notes); v != "" {
			notes = &v
		}
	}

	var assignedTo *string
	if req.AssignedTo != nil {
		if v := strings.TrimSpace(*req.AssignedTo); v != "" {
			assignedTo = &v
		}
	}

	listID := ""
	if req.ListID != nil {
		listID = strings.TrimSpace(*req.ListID)
	}
	if listID == "" {
		inbox, err := ensureDefaultList(c.Request.Context(), h.db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		listID = inbox.ID
	}

	id := uuid.NewString()
	t := now()
	if _, err := h.db.ExecContext(c.Request.Context(),
		`INSERT INTO todos (id, list_id, title, notes, done, due_at, remind_at, remind_sent_at,
		                    assigned_to, shared_with, created_by, created_at, updated_at, version, deleted_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, NULL, ?, ?, ?, ?, ?, 1, NULL)`,
		id, listID, title, notes, req.DueAt, req.RemindAt,
		assignedTo, models.NormalizeIDSet(req.SharedWith), user.ID, t, t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	todo, err := scanTodo(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+todoColumns+" FROM todos WHERE id = ?", id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todo"})
		return
	}

	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) GetTodos(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	q := strings.ToLower(strings.TrimSpace(c.Query("query")))
	includeDone := c.Query("include_done") == "true"
	includeDeleted := c.Query("include_deleted") == "true"
	deletedOnly := c.Query("deleted_only") == "true"
	listID := strings.TrimSpace(c.Query("list_id"))

	limit := 200
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "200")); err == nil && v > 0 && v <= 1000 {
		limit = v
	}

	where := []string{todoVisibleExpr}
	args := []any{user.ID, user.ID, user.ID}

	switch {
	case deletedOnly:
		where = append(where, "deleted_at IS NOT NULL")
	case !includeDeleted:
		where = append(where, "deleted_at IS NULL")
	}
	if !includeDone {
		where = append(where, "done = 0")
	}
	if listID != "" {
		where = append(where, "list_id = ?")
		args = append(args, listID)
	}
	if q != "" {
		where = append(where, "(lower(title) LIKE ? OR lower(COALESCE(notes, '')) LIKE ?)")
		args = append(args, "%"+q+"%", "%"+q+"%")
	}

	query := "SELECT " + todoColumns + " FROM todos WHERE " + strings.Join(where, " AND ") +
		" ORDER BY done ASC, COALESCE(due_at, " + maxUnix + ") ASC, COALESCE(remind_at, " + maxUnix + ") ASC, updated_at DESC, id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := h.db.QueryContext(c.Request.Context(), query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan todo"})
			return
		}
		todos = append(todos, t)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "todos": todos})
}

func (h *TodoHandler) GetTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	todo, err := scanTodo(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+todoColumns+" FROM todos WHERE id = ?", c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if !policy.CanSee(user.ID, todo.CreatedBy, todo.AssignedTo, todo.SharedWith) {
		// 404 rather than 403: do not confirm existence to outsiders.
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) PatchTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.PatchTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	todoID := c.Param("id")
	var updated *models.Todo
	err := h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanTodo(tx.QueryRowContext(ctx,
			"SELECT "+todoColumns+" FROM todos WHERE id = ?", todoID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanSee(user.ID, cur.CreatedBy, cur.AssignedTo, cur.SharedWith) {
			return httpError(http.StatusNotFound, "Not found")
		}
		if cur.DeletedAt != nil {
			return httpError(http.StatusConflict, "Todo is in trash")
		}
		if req.IfVersion != nil && *req.IfVersion != cur.Version {
			return httpError(http.StatusConflict, "Version conflict")
		}

		sets := []string{}
		args := []any{}

		if req.Title.Set {
			if req.Title.Value == nil || strings.TrimSpace(*req.Title.Value) == "" {
				return httpError(http.StatusBadRequest, "Missing title")
			}
			sets = append(sets, "title = ?")
			args = append(args, strings.TrimSpace(*req.Title.Value))
		}
		if req.Notes.Set {
			var notes *string
			if req.Notes.Value != nil {
				if v := strings.TrimSpace(*req.Notes.Value); v != "" {
					notes = &v
				}
			}
			sets = append(sets, "notes = ?")
			args = append(args, notes)
		}
		if req.Done.Set {
			done := 0
			if req.Done.Value != nil && *req.Done.Value {
				done = 1
			}
			sets = append(sets, "done = ?")
			args = append(args, done)
		}
		if req.DueAt.Set {
			sets = append(sets, "due_at = ?")
			args = append(args, req.DueAt.Value)
		}
		if req.RemindAt.Set {
			sets = append(sets, "remind_at = ?")
			args = append(args, req.RemindAt.Value)
			// A changed reminder time must be able to fire again.
			if !equalInt64Ptr(req.RemindAt.Value, cur.RemindAt) {
				sets = append(sets, "remind_sent_at = NULL")
			}
		}
		if req.AssignedTo.Set {
			var assigned *string
			if req.AssignedTo.Value != nil {
				if v := strings.TrimSpace(*req.AssignedTo.Value); v != "" {
					assigned = &v
				}
			}
			sets = append(sets, "assigned_to = ?")
			args = append(args, assigned)
		}
		if req.SharedWith.Set {
			if req.SharedWith.Value == nil {
				return httpError(http.StatusBadRequest, "shared_with must be a list")
			}
			sets = append(sets, "shared_with = ?")
			args = append(args, models.NormalizeIDSet(*req.SharedWith.Value))
		}

		sets = append(sets, "updated_at = ?", "version = version + 1")
		args = append(args, now(), todoID)

		if _, err := tx.ExecContext(ctx,
			"UPDATE todos SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return err
		}

		updated, err = scanTodo(tx.QueryRowContext(ctx,
			"SELECT "+todoColumns+" FROM todos WHERE id = ?", todoID))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteTodo moves a todo to the trash (soft delete). Creator only.
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	todoID := c.Param("id")
	err := h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanTodo(tx.QueryRowContext(ctx,
			"SELECT "+todoColumns+" FROM todos WHERE id = ?", todoID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanSee(user.ID, cur.CreatedBy, cur.AssignedTo, cur.SharedWith) {
			return httpError(http.StatusNotFound, "Not found")
		}
		if !policy.CanDelete(user.ID, cur.CreatedBy) {
			return httpError(http.StatusForbidden, "Only creator can delete")
		}
		if cur.DeletedAt != nil {
			return httpError(http.StatusConflict, "Already in trash")
		}

		t := now()
		_, err = tx.ExecContext(ctx,
			"UPDATE todos SET deleted_at = ?, updated_at = ?, version = version + 1 WHERE id = ?",
			t, t, todoID)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": true, "id": todoID})
}

// RestoreTodo pulls a todo back out of the trash. Creator only.
func (h *TodoHandler) RestoreTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	todoID := c.Param("id")
	var restored *models.Todo
	err := h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanTodo(tx.QueryRowContext(ctx,
			"SELECT "+todoColumns+" FROM todos WHERE id = ?", todoID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanSee(user.ID, cur.CreatedBy, cur.AssignedTo, cur.SharedWith) {
			return httpError(http.StatusNotFound, "Not found")
		}
		if !policy.CanDelete(user.ID, cur.CreatedBy) {
			return httpError(http.StatusForbidden, "Only creator can restore")
		}
		if cur.DeletedAt == nil {
			return httpError(http.StatusConflict, "Not in trash")
		}

		t := now()
		if _, err := tx.ExecContext(ctx,
			"UPDATE todos SET deleted_at = NULL, updated_at = ?, version = version + 1 WHERE id = ?",
			t, todoID); err != nil {
			return err
		}

		restored, err = scanTodo(tx.QueryRowContext(ctx,
			"SELECT "+todoColumns+" FROM todos WHERE id = ?", todoID))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, restored)
}

// PurgeTodo permanently removes an already-trashed todo. Any principal who
// can see the todo may purge; this is the sole irreversible operation.
func (h *TodoHandler) PurgeTodo(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	todoID := c.Param("id")
	err := h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanTodo(tx.QueryRowContext(ctx,
			"SELECT "+todoColumns+" FROM todos WHERE id = ?", todoID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanPurge(user.ID, cur.CreatedBy, cur.AssignedTo, cur.SharedWith) {
			return httpError(http.StatusNotFound, "Not found")
		}
		if cur.DeletedAt == nil {
			return httpError(http.StatusConflict, "Not in trash")
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", todoID)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "purged": true, "id": todoID})
}
