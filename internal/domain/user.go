package domain

import "time"

// User is a registered collector account.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	ProfilePic   string `json:"profile_pic,omitempty"`
	// AvatarColor is derived from the ID for accounts without a profile
	// picture. Set on API responses, never persisted.
	AvatarColor string    `json:"avatar_color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session is a server-side refresh session. The access token is a short-lived
// PASETO; the session outlives it and is revoked on logout.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
