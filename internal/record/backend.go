// AngelaMos | 2026
// backend.go

package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/agriconnect/internal/core"
)

type sqlBackend struct {
	db core.DBTX
}

// NewSQLBackend stores records in the records table. The upsert is valid
// on both Postgres and SQLite.
func NewSQLBackend(db core.DBTX) Backend {
	return &sqlBackend{db: db}
}

func (b *sqlBackend) Load(ctx context.Context, key string) ([]byte, error) {
	query := b.db.Rebind(`SELECT value FROM records WHERE key = ?`)

	var value string
	err := b.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load record: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	return []byte(value), nil
}

func (b *sqlBackend) Save(ctx context.Context, key string, value []byte) error {
	query := b.db.Rebind(`
		INSERT INTO records (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`)

	if _, err := b.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	return nil
}

type redisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) Backend {
	return &redisBackend{client: client}
}

func (b *redisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load record: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	return value, nil
}

func (b *redisBackend) Save(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.records[key]
	if !ok {
		return nil, fmt.Errorf("load record: %w", ErrNotFound)
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (b *MemoryBackend) Save(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	b.mu.Lock()
	b.records[key] = stored
	b.mu.Unlock()

	return nil
}
