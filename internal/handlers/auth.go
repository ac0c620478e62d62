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

	"github.com/truedezigner/notch/internal/auth"
	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
)

type AuthHandler struct {
	db        *database.DB
	sessions  *auth.Manager
	validator *validator.Validate
}

func NewAuthHandler(db *database.DB, sessions *auth.Manager) *AuthHandler {
	return &AuthHandler{
		db:        db,
		sessions:  sessions,
		validator: validator.New(),
	}
}

func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": "notch"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	handle := strings.ToLower(strings.TrimSpace(req.Handle))
	if handle == "" {
		handle = strings.ToLower(strings.TrimSpace(req.Username))
	}
	password := strings.TrimSpace(req.Password)
	if handle == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing handle/password"})
		return
	}

	var user models.User
	var passwordHash string
	err := h.db.QueryRowContext(c.Request.Context(),
		`SELECT id, handle, display_name, password_hash, created_at, updated_at
		 FROM users WHERE handle = ?`, handle).Scan(
		&user.ID, &user.Handle, &user.DisplayName, &passwordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login"})
		return
	}

	if !auth.CheckPasswordHash(password, passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login"})
		return
	}

	token, err := h.sessions.IssueSession(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	if adminID, err := earliestUserID(c.Request.Context(), h.db); err == nil {
		user.IsAdmin = adminID == user.ID
	}

	c.JSON(http.StatusOK, models.LoginResponse{OK: true, Token: token, User: user})
}

// Bootstrap creates the first user; once any user exists it always conflicts.
func (h *AuthHandler) Bootstrap(c *gin.Context) {
	var req models.BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	handle := strings.ToLower(strings.TrimSpace(req.Handle))
	password := strings.TrimSpace(req.Password)
	if handle == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing handle/password"})
		return
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = handle
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var user models.User
	err = h.db.WithTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return httpError(http.StatusConflict, "Already bootstrapped")
		}

		t := now()
		user = models.User{
			ID:          uuid.NewString(),
			Handle:      handle,
			DisplayName: displayName,
			CreatedAt:   t,
			UpdatedAt:   t,
			IsAdmin:     true,
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, handle, display_name, password_hash, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			user.ID, user.Handle, user.DisplayName, hash, t, t)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if !p.IsUser() {
		c.JSON(http.StatusOK, gin.H{"ok": true, "kind": auth.KindService, "user": nil})
		return
	}

	user := *p.User
	adminID, err := earliestUserID(c.Request.Context(), h.db)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	user.IsAdmin = adminID == user.ID

	c.JSON(http.StatusOK, gin.H{"ok": true, "kind": auth.KindUser, "user": user})
}
