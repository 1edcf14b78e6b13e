package environment

import (
	"context"
	"fmt"

	"github.com/dominic-source/kadabite-app/internal/logger"
)

// SessionInvalidator signs a session out. session.Store satisfies it.
type SessionInvalidator interface {
	Delete(ctx context.Context, sessionID string) error
}

// Selector reads and changes a client's backend target. Every change
// invalidates the caller's session before returning, so a session is never
// carried over to a different backend.
type Selector struct {
	store       PreferenceStore
	invalidator SessionInvalidator
}

func NewSelector(store PreferenceStore, invalidator SessionInvalidator) *Selector {
	return &Selector{store: store, invalidator: invalidator}
}

// Get returns the persisted target for the client.
func (s *Selector) Get(ctx context.Context, clientID string) (Target, error) {
	if clientID == "" {
		return Unset, nil
	}
	return s.store.Load(ctx, clientID)
}

// Set persists t and then invalidates sessionID. An empty sessionID means
// the caller holds no session and nothing needs invalidating.
func (s *Selector) Set(ctx context.Context, clientID, sessionID string, t Target) error {
	if _, err := ParseTarget(string(t)); err != nil {
		return err
	}

	if err := s.store.Save(ctx, clientID, t); err != nil {
		return fmt.Errorf("environment: persist preference: %w", err)
	}

	if sessionID != "" {
		if err := s.invalidator.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("environment: invalidate session: %w", err)
		}
	}

	logger.Info("backend target changed", map[string]any{
		"backend":    string(t),
		"signed_out": sessionID != "",
	})

	return nil
}

// Toggle flips current, the target the request is running under, between
// python and node; an unset target becomes python.
func (s *Selector) Toggle(ctx context.Context, clientID, sessionID string, current Target) (Target, error) {
	next := current.Next()
	if err := s.Set(ctx, clientID, sessionID, next); err != nil {
		return Unset, err
	}
	return next, nil
}
