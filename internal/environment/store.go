package environment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// StorageKey is the persisted preference name.
const StorageKey = "environment-storage"

// PreferenceStore persists a client's selected target.
type PreferenceStore interface {
	Load(ctx context.Context, clientID string) (Target, error)
	Save(ctx context.Context, clientID string, t Target) error
}

type preference struct {
	Backend Target `json:"backend"`
}

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed preference store. Preferences have no expiry.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(clientID string) string {
	return StorageKey + ":" + clientID
}

func (s *RedisStore) Load(ctx context.Context, clientID string) (Target, error) {
	val, err := s.client.Get(ctx, s.key(clientID)).Result()
	if err == redis.Nil {
		return Unset, nil
	}
	if err != nil {
		return Unset, err
	}

	var p preference
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return Unset, fmt.Errorf("environment: failed to unmarshal: %w", err)
	}
	return ParseTarget(string(p.Backend))
}

func (s *RedisStore) Save(ctx context.Context, clientID string, t Target) error {
	data, err := json.Marshal(preference{Backend: t})
	if err != nil {
		return fmt.Errorf("environment: failed to marshal: %w", err)
	}
	return s.client.Set(ctx, s.key(clientID), data, 0).Err()
}

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]Target
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]Target)}
}

func (s *MemoryStore) Load(_ context.Context, clientID string) (Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs[clientID], nil
}

func (s *MemoryStore) Save(_ context.Context, clientID string, t Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[clientID] = t
	return nil
}
