package models

import "time"

// Session maps an opaque token to the user it authenticates. The token is
// the lookup key and is never stored inside the record itself when
// serialized to the backing store; ExpiresAt is the sole liveness signal.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
