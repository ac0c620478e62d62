package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
)

type ListHandler struct {
	db        *database.DB
	validator *validator.Validate
}

func NewListHandler(db *database.DB) *ListHandler {
	return &ListHandler{
		db:        db,
		validator: validator.New(),
	}
}

func (h *ListHandler) GetLists(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if _, err := ensureDefaultList(c.Request.Context(), h.db, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows, err := h.db.QueryContext(c.Request.Context(),
		"SELECT "+listColumns+" FROM todo_lists WHERE "+sharedVisibleExpr+" ORDER BY lower(name) ASC",
		user.ID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lists"})
		return
	}
	defer rows.Close()

	lists := []*models.TodoList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan list"})
			return
		}
		lists = append(lists, l)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "lists": lists})
}

func (h *ListHandler) CreateList(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
		return
	}

	id := uuid.NewString()
	t := now()
	if _, err := h.db.ExecContext(c.Request.Context(),
		`INSERT INTO todo_lists (id, name, created_by, shared_with, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, user.ID, models.NormalizeIDSet(req.SharedWith), t, t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	list, err := scanList(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+listColumns+" FROM todo_lists WHERE id = ?", id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return
	}

	c.JSON(http.StatusCreated, list)
}

// DeleteList removes a list without deleting its todos: they move to the
// caller's Inbox first. Inbox itself can never be deleted.
func (h *ListHandler) DeleteList(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	listID := c.Param("id")

	inbox, err := ensureDefaultList(c.Request.Context(), h.db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	err = h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		row := tx.QueryRowContext(ctx, "SELECT "+listColumns+" FROM todo_lists WHERE id = ?", listID)
		cur, err := scanList(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}

		if cur.CreatedBy != user.ID {
			return httpError(http.StatusForbidden, "Only creator can delete")
		}
		if cur.ID == inbox.ID || strings.EqualFold(strings.TrimSpace(cur.Name), "Inbox") {
			return httpError(http.StatusConflict, "Cannot delete Inbox")
		}

		// Reassign todos before removing the container.
		if _, err := tx.ExecContext(ctx,
			"UPDATE todos SET list_id = ?, updated_at = ? WHERE list_id = ?",
			inbox.ID, now(), listID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM todo_lists WHERE id = ?", listID)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": true, "id": listID, "moved_todos_to": inbox.ID})
}
