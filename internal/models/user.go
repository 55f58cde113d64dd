package models

import "time"

// User is an authenticated teacher identity established via Google OAuth.
type User struct {
	ID        int64     `json:"-"`
	Subject   string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Session is a server-side login session referenced by the session cookie.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired checks if the session has passed its expiration time
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
