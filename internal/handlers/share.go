package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/truedezigner/notch/internal/auth"
	"github.com/truedezigner/notch/internal/models"
	"github.com/truedezigner/notch/internal/policy"
)

// ShareNote issues an anonymous share token for a note the caller can see.
func (h *NoteHandler) ShareNote(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.ShareNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// An empty body means "defaults".
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	noteID := c.Param("id")
	note, err := scanNote(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", noteID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if !policy.CanSee(user.ID, note.CreatedBy, nil, note.SharedWith) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if note.DeletedAt != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Note is in trash"})
		return
	}

	canEdit := true
	if req.CanEdit != nil {
		canEdit = *req.CanEdit
	}
	var expiresAt *int64
	if req.ExpiresInSeconds != nil {
		t := now() + *req.ExpiresInSeconds
		expiresAt = &t
	}

	token, err := auth.NewToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	canEditInt := 0
	if canEdit {
		canEditInt = 1
	}
	if _, err := h.db.ExecContext(c.Request.Context(),
		`INSERT INTO note_shares (token, note_id, created_by, can_edit, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		token, noteID, user.ID, canEditInt, expiresAt, now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create share"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":         true,
		"token":      token,
		"url":        "/api/public/notes/" + token,
		"can_edit":   canEdit,
		"expires_at": expiresAt,
	})
}

// resolveShare validates the token and loads the target note. Expired shares
// answer 410; a missing share or a trashed note answers 404. Writes the
// error response itself when it returns !ok.
func (h *NoteHandler) resolveShare(c *gin.Context) (*models.NoteShare, *models.Note, bool) {
	share, err := scanShare(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+shareColumns+" FROM note_shares WHERE token = ?", c.Param("token")))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return nil, nil, false
	}
	if share.ExpiresAt != nil && *share.ExpiresAt <= now() {
		c.JSON(http.StatusGone, gin.H{"error": "Share link expired"})
		return nil, nil, false
	}

	note, err := scanNote(h.db.QueryRowContext(c.Request.Context(),
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", share.NoteID))
	if err != nil || note.DeletedAt != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return nil, nil, false
	}

	return share, note, true
}

// PublicGetNote reads a note through a share token; no session required.
func (h *NoteHandler) PublicGetNote(c *gin.Context) {
	_, note, ok := h.resolveShare(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, note)
}

// PublicPatchNote edits a note through a share token, acting as the share's
// creator. Requires can_edit; version conflicts apply as usual.
func (h *NoteHandler) PublicPatchNote(c *gin.Context) {
	share, note, ok := h.resolveShare(c)
	if !ok {
		return
	}
	if !share.CanEdit {
		c.JSON(http.StatusForbidden, gin.H{"error": "Share is read-only"})
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

	updated, err := h.applyNotePatch(c.Request.Context(), share.CreatedBy, note.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
