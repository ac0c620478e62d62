package models

type User struct {
	ID           string  `json:"id"`
	Handle       string  `json:"handle"`
	DisplayName  string  `json:"display_name"`
	PasswordHash *string `json:"-"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`

	// Computed: true for the earliest-created user. There is no stored role.
	IsAdmin bool `json:"is_admin"`
}

type Session struct {
	Token      string `json:"token"`
	UserID     string `json:"user_id"`
	CreatedAt  int64  `json:"created_at"`
	ExpiresAt  *int64 `json:"expires_at"`
	LastSeenAt int64  `json:"last_seen_at"`
}

type LoginRequest struct {
	Handle   string `json:"handle"`
	Username string `json:"username"` // accepted as an alias for handle
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	User  User   `json:"user"`
}

type BootstrapRequest struct {
	Handle      string `json:"handle" validate:"required,min=1,max=50"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" validate:"required,min=1"`
}

type CreateUserRequest struct {
	Handle      string `json:"handle" validate:"required,min=1,max=50"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" validate:"required,min=1"`
}
