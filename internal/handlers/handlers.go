package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/truedezigner/notch/internal/auth"
	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
)

func now() int64 { return time.Now().Unix() }

// maxUnix sorts null timestamps last in COALESCE ordering.
const maxUnix = "9223372036854775807"

// Visibility filters. Membership uses json_each containment so a user id that
// is a substring of another id can never match.
const (
	todoVisibleExpr   = "(created_by = ? OR assigned_to = ? OR EXISTS (SELECT 1 FROM json_each(shared_with) WHERE json_each.value = ?))"
	sharedVisibleExpr = "(created_by = ? OR EXISTS (SELECT 1 FROM json_each(shared_with) WHERE json_each.value = ?))"
)

type scanner interface {
	Scan(dest ...any) error
}

// apiError carries an HTTP status out of a WithTx closure.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func httpError(status int, message string) error {
	return &apiError{status: status, message: message}
}

// respondError maps a handler error onto the response; unexpected errors
// become opaque 500s.
func respondError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		c.JSON(ae.status, gin.H{"error": ae.message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

// requireUser rejects unauthenticated callers and service principals.
func requireUser(c *gin.Context) (*models.User, bool) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}
	if !p.IsUser() {
		c.JSON(http.StatusForbidden, gin.H{"error": "User session required"})
		return nil, false
	}
	return p.User, true
}

// earliestUserID identifies the implicit admin: smallest created_at, ties
// broken by id so colliding timestamps stay deterministic.
func earliestUserID(ctx context.Context, q database.DBTX) (string, error) {
	var id string
	err := q.QueryRowContext(ctx,
		"SELECT id FROM users ORDER BY created_at ASC, id ASC LIMIT 1").Scan(&id)
	return id, err
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
