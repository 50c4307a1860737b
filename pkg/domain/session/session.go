package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a time-bounded authorization credential issued in exchange for
// a configured API key. Multiple live sessions per client are allowed;
// issuing a new one never revokes its predecessors.
type Session struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClientIdentity string    `json:"client_identity" gorm:"index"`
	IssuedAt       time.Time `json:"issued_at"`
	ExpiresAt      time.Time `json:"expires_at" gorm:"index"`
	Revoked        bool      `json:"revoked"`
}

func (Session) TableName() string {
	return "public.sessions"
}

func NewSession(clientIdentity string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		ClientIdentity: clientIdentity,
		IssuedAt:       now,
		ExpiresAt:      now.Add(ttl),
		Revoked:        false,
	}
}

// Active reports whether the session authorizes requests at time t.
// The expiry boundary itself is denied.
func (s *Session) Active(t time.Time) bool {
	if s.Revoked {
		return false
	}
	return !t.Before(s.IssuedAt) && t.Before(s.ExpiresAt)
}
