package model

import (
	"errors"
	"time"
)

// Session is the server-side record behind the signed session cookie.
// UserID is zero for an anonymous session that only carries flashes.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAuthenticated returns true when the session is bound to an account.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != 0
}

// IsExpired returns true if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID        int64
	Username  string
	SessionID string
}

// Flash kinds, mirroring the info/error message lists shown on each page.
const (
	FlashInfo  = "info"
	FlashError = "error"
)

// Flashes is the drained set of messages for one page render.
type Flashes struct {
	Infos  []string `json:"infos"`
	Errors []string `json:"errors"`
}

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInvalid  = errors.New("session token invalid")
	ErrSessionExpired  = errors.New("session expired")
)
