package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	authpkg "github.com/truedezigner/notch/internal/auth"
	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
)

type UserHandler struct {
	db        *database.DB
	validator *validator.Validate
}

func NewUserHandler(db *database.DB) *UserHandler {
	return &UserHandler{
		db:        db,
		validator: validator.New(),
	}
}

// GetUsers is the directory; both user and service principals may read it
// (the service needs it to map handles).
func (h *UserHandler) GetUsers(c *gin.Context) {
	if _, ok := authpkg.GetPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	adminID, _ := earliestUserID(c.Request.Context(), h.db)

	rows, err := h.db.QueryContext(c.Request.Context(),
		"SELECT id, handle, display_name, created_at, updated_at FROM users ORDER BY handle")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Handle, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user"})
			return
		}
		u.IsAdmin = u.ID == adminID
		users = append(users, u)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "users": users})
}

// CreateUser adds a user; only the implicit admin may call it.
func (h *UserHandler) CreateUser(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	adminID, err := earliestUserID(c.Request.Context(), h.db)
	if err != nil || adminID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin only"})
		return
	}

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

	var exists int
	if err := h.db.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM users WHERE handle = ?", handle).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Handle already taken"})
		return
	}

	hash, err := authpkg.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	t := now()
	created := models.User{
		ID:          uuid.NewString(),
		Handle:      handle,
		DisplayName: displayName,
		CreatedAt:   t,
		UpdatedAt:   t,
	}
	if _, err := h.db.ExecContext(c.Request.Context(),
		`INSERT INTO users (id, handle, display_name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.Handle, created.DisplayName, hash, t, t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": created})
}
