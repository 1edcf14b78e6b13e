package session

import (
	"context"
	"encoding/json"
	"time"
)

// Session is a signed-in browser. View holds the derived session object
// returned to the client; Backend is the target the session was issued
// under and must match the target of every later request.
type Session struct {
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Provider  string          `json:"provider"`
	Backend   string          `json:"backend"`
	View      json.RawMessage `json:"view,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"` // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) for an unknown session.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
