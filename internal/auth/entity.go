// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Session is the server-side record behind a session token. It carries a
// copy of the account so resolving a request needs no database read.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UserSince time.Time `json:"user_since"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) IsValid() bool {
	return s.ID != "" && s.UserID != "" && !s.IsExpired()
}

func (s *Session) User() *UserInfo {
	return &UserInfo{
		ID:        s.UserID,
		Name:      s.Name,
		Email:     s.Email,
		CreatedAt: s.UserSince,
	}
}
