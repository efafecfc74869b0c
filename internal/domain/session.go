package domain

import "time"

// Session represents an OAuth session
type Session struct {
	State     string    `json:"state"`
	Shop      string    `json:"shop"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
