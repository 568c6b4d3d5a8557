// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/agriconnect/internal/core"
)

// ErrCorruptSession is returned when a stored session record exists but
// cannot be decoded.
var ErrCorruptSession = errors.New("corrupt session record")

const sessionKeyPrefix = "session:"

type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Create(ctx context.Context, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("create session: %w", core.ErrTokenExpired)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (s *redisSessionStore) Find(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return decodeSession(data)
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MemorySessionStore keeps sessions in process. Expired entries are
// dropped lazily on lookup.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string][]byte)}
}

func (s *MemorySessionStore) Create(_ context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = data
	s.mu.Unlock()

	return nil
}

func (s *MemorySessionStore) Find(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	data, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}

	session, err := decodeSession(data)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		_ = s.Delete(context.Background(), id) //nolint:errcheck // in-memory delete cannot fail
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}

	return session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func decodeSession(data []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("find session: %w", ErrCorruptSession)
	}
	if session.ID == "" || session.UserID == "" {
		return nil, fmt.Errorf("find session: %w", ErrCorruptSession)
	}
	return &session, nil
}
