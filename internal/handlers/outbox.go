package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
)

type OutboxHandler struct {
	db *database.DB
}

func NewOutboxHandler(db *database.DB) *OutboxHandler {
	return &OutboxHandler{db: db}
}

// GetNotifications returns the caller's outbox ledger, newest first. This is
// an audit view of reminder delivery attempts, not an inbox.
func (h *OutboxHandler) GetNotifications(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	limit := 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	rows, err := h.db.QueryContext(c.Request.Context(),
		"SELECT "+outboxColumns+" FROM outbox_notifications WHERE user_id = ? ORDER BY created_at DESC, id ASC LIMIT ?",
		user.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	defer rows.Close()

	notifications := []*models.OutboxNotification{}
	for rows.Next() {
		n, err := scanOutbox(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan notification"})
			return
		}
		notifications = append(notifications, n)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "notifications": notifications})
}
