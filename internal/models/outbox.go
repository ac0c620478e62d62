package models

const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxError   = "error"
)

// OutboxNotification is one delivery attempt to one recipient. The ledger is
// append-mostly; only status, last_error and sent_at change after insert.
type OutboxNotification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Topic     string     `json:"topic"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	ClickURL  *string    `json:"click_url"`
	Priority  *int       `json:"priority"`
	Tags      StringList `json:"tags"`
	Status    string     `json:"status"`
	LastError *string    `json:"last_error"`
	CreatedAt int64      `json:"created_at"`
	SentAt    *int64     `json:"sent_at"`
}
