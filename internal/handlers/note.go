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

type NoteHandler struct {
	db        *database.DB
	validator *validator.Validate
}

func NewNoteHandler(db *database.DB) *NoteHandler {
	return &NoteHandler{
		db:        db,
		validator: validator.New(),
	}
}

// --- Note groups ---

func (h *NoteHandler) GetGroups(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if _, err := ensureDefaultGroup(c.Request.Context(), h.db, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows, err := h.db.QueryContext(c.Request.Context(),
		"SELECT "+groupColumns+" FROM note_groups WHERE "+sharedVisibleExpr+" ORDER BY lower(name) ASC",
		user.ID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	defer rows.Close()

	groups := []*models.NoteGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan group"})
			return
		}
		groups = append(groups, g)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "groups": groups})
}

func (h *NoteHandler) CreateGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
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
		`INSERT INTO note_groups (id, name, created_by, shared_with, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, user.ID, models.NormalizeIDSet(req.SharedWith), t, t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	group, err := scanGroup(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+groupColumns+" FROM note_groups WHERE id = ?", id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}

	c.JSON(http.StatusCreated, group)
}

func (h *NoteHandler) PatchGroup(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.PatchGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	groupID := c.Param("id")
	var updated *models.NoteGroup
	err := h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanGroup(tx.QueryRowContext(ctx,
			"SELECT "+groupColumns+" FROM note_groups WHERE id = ?", groupID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanSee(user.ID, cur.CreatedBy, nil, cur.SharedWith) {
			return httpError(http.StatusNotFound, "Not found")
		}

		sets := []string{}
		args := []any{}
		if req.Name.Set {
			if req.Name.Value == nil || strings.TrimSpace(*req.Name.Value) == "" {
				return httpError(http.StatusBadRequest, "Missing name")
			}
			sets = append(sets, "name = ?")
			args = append(args, strings.TrimSpace(*req.Name.Value))
		}
		if req.SharedWith.Set {
			if req.SharedWith.Value == nil {
				return httpError(http.StatusBadRequest, "shared_with must be a list")
			}
			sets = append(sets, "shared_with = ?")
			args = append(args, models.NormalizeIDSet(*req.SharedWith.Value))
		}

		sets = append(sets, "updated_at = ?")
		args = append(args, now(), groupID)

		if _, err := tx.ExecContext(ctx,
			"UPDATE note_groups SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return err
		}

		updated, err = scanGroup(tx.QueryRowContext(ctx,
			"SELECT "+groupColumns+" FROM note_groups WHERE id = ?", groupID))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// --- Notes ---

func (h *NoteHandler) GetNotes(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	q := strings.ToLower(strings.TrimSpace(c.Query("query")))
	includeDeleted := c.Query("include_deleted") == "true"
	deletedOnly := c.Query("deleted_only") == "true"
	groupID := strings.TrimSpace(c.Query("group_id"))

	limit := 200
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "200")); err == nil && v > 0 && v <= 1000 {
		limit = v
	}

	where := []string{sharedVisibleExpr}
	args := []any{user.ID, user.ID}

	switch {
	case deletedOnly:
		where = append(where, "deleted_at IS NOT NULL")
	case !includeDeleted:
		where = append(where, "deleted_at IS NULL")
	}
	if groupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, groupID)
	}
	if q != "" {
		where = append(where, "(lower(title) LIKE ? OR lower(body_md) LIKE ?)")
		args = append(args, "%"+q+"%", "%"+q+"%")
	}

	query := "SELECT " + noteColumns + " FROM notes WHERE " + strings.Join(where, " AND ") +
		" ORDER BY updated_at DESC, id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := h.db.QueryContext(c.Request.Context(), query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan note"})
			return
		}
		notes = append(notes, n)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "notes": notes})
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateNoteRequest
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

	bodyMD := ""
	if req.BodyMD != nil {
		bodyMD = *req.BodyMD
	}

	groupID := ""
	if req.GroupID != nil {
		groupID = strings.TrimSpace(*req.GroupID)
	}
	if groupID == "" {
		general, err := ensureDefaultGroup(c.Request.Context(), h.db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		groupID = general.ID
	}

	id := uuid.NewString()
	t := now()
	if _, err := h.db.ExecContext(c.Request.Context(),
		`INSERT INTO notes (id, group_id, title, body_md, shared_with, created_by, created_at, updated_at, version, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, NULL)`,
		id, groupID, title, bodyMD, models.NormalizeIDSet(req.SharedWith), user.ID, t, t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	note, err := scanNote(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch note"})
		return
	}

	c.JSON(http.StatusCreated, note)
}

func (h *NoteHandler) GetNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	note, err := scanNote(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if !policy.CanSee(user.ID, note.CreatedBy, nil, note.SharedWith) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) PatchNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.PatchNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	note, err := h.applyNotePatch(c.Request.Context(), user.ID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// applyNotePatch is shared between the session PATCH and the public
// share-token PATCH (which impersonates the share creator).
func (h *NoteHandler) applyNotePatch(ctx context.Context, actorID, noteID string, req *models.PatchNoteRequest) (*models.Note, error) {
	var updated *models.Note
	err := h.db.WithTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanNote(tx.QueryRowContext(ctx,
			"SELECT "+noteColumns+" FROM notes WHERE id = ?", noteID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanSee(actorID, cur.CreatedBy, nil, cur.SharedWith) {
			return httpError(http.StatusNotFound, "Not found")
		}
		if cur.DeletedAt != nil {
			return httpError(http.StatusConflict, "Note is in trash")
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
		if req.BodyMD.Set {
			body := ""
			if req.BodyMD.Value != nil {
				body = *req.BodyMD.Value
			}
			sets = append(sets, "body_md = ?")
			args = append(args, body)
		}
		if req.GroupID.Set {
			var groupID *string
			if req.GroupID.Value != nil {
				if v := strings.TrimSpace(*req.GroupID.Value); v != "" {
					groupID = &v
				}
			}
			sets = append(sets, "group_id = ?")
			args = append(args, groupID)
		}
		if req.SharedWith.Set {
			if req.SharedWith.Value == nil {
				return httpError(http.StatusBadRequest, "shared_with must be a list")
			}
			sets = append(sets, "shared_with = ?")
			args = append(args, models.NormalizeIDSet(*req.SharedWith.Value))
		}

		sets = append(sets, "updated_at = ?", "version = version + 1")
		args = append(args, now(), noteID)

		if _, err := tx.ExecContext(ctx,
			"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return err
		}

		updated, err = scanNote(tx.QueryRowContext(ctx,
			"SELECT "+noteColumns+" FROM notes WHERE id = ?", noteID))
		return err
	})
	return updated, err
}

// DeleteNote moves a note to the trash. Creator only.
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	noteID := c.Param("id")
	err := h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanNote(tx.QueryRowContext(ctx,
			"SELECT "+noteColumns+" FROM notes WHERE id = ?", noteID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanSee(user.ID, cur.CreatedBy, nil, cur.SharedWith) {
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
			"UPDATE notes SET deleted_at = ?, updated_at = ?, version = version + 1 WHERE id = ?",
			t, t, noteID)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": true, "id": noteID})
}

// RestoreNote pulls a note back out of the trash. Creator only.
func (h *NoteHandler) RestoreNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	noteID := c.Param("id")
	var restored *models.Note
	err := h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		cur, err := scanNote(tx.QueryRowContext(ctx,
			"SELECT "+noteColumns+" FROM notes WHERE id = ?", noteID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httpError(http.StatusNotFound, "Not found")
			}
			return err
		}
		if !policy.CanSee(user.ID, cur.CreatedBy, nil, cur.SharedWith) {
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
			"UPDATE notes SET deleted_at = NULL, updated_at = ?, version = version + 1 WHERE id = ?",
			t, noteID); err != nil {
			return err
		}

		restored, err = scanNote(tx.QueryRowContext(ctx,
			"SELECT "+noteColumns+" FROM notes WHERE id = ?", noteID))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, restored)
}
