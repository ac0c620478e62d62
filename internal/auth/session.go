package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"github.com/truedezigner/notch/internal/database"
	"github.com/truedezigner/notch/internal/models"
)

var ErrInvalidSession = errors.New("invalid session")

const (
	KindUser    = "user"
	KindService = "service"
)

// Principal is the authenticated actor for a request: a user session or the
// fixed service credential (no user identity).
type Principal struct {
	Kind string
	User *models.User
}

func (p *Principal) IsUser() bool { return p.Kind == KindUser }

// Manager issues and resolves DB-backed bearer session tokens.
type Manager struct {
	db           *database.DB
	serviceToken string
	sessionTTL   time.Duration
}

func NewManager(db *database.DB, serviceToken string, sessionDays int) *Manager {
	return &Manager{
		db:           db,
		serviceToken: serviceToken,
		sessionTTL:   time.Duration(sessionDays) * 24 * time.Hour,
	}
}

// NewToken returns an unguessable bearer secret. Also used for share links.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (m *Manager) IssueSession(ctx context.Context, userID string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	now := time.Now().Unix()
	expiresAt := now + int64(m.sessionTTL.Seconds())
	_, err = m.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?)`,
		token, userID, now, expiresAt, now)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a bearer token to a principal. The fixed service token wins
// over session lookup; a valid session touches last_seen_at.
func (m *Manager) Resolve(ctx context.Context, token string) (*Principal, error) {
	if m.serviceToken != "" && token == m.serviceToken {
		return &Principal{Kind: KindService}, nil
	}

	now := time.Now().Unix()
	var user models.User
	err := m.db.QueryRowContext(ctx,
		`SELECT u.id, u.handle, u.display_name, u.created_at, u.updated_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ? AND (s.expires_at IS NULL OR s.expires_at > ?)`,
		token, now).Scan(&user.ID, &user.Handle, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if _, err := m.db.ExecContext(ctx,
		"UPDATE sessions SET last_seen_at = ? WHERE token = ?", now, token); err != nil {
		return nil, err
	}

	return &Principal{Kind: KindUser, User: &user}, nil
}
