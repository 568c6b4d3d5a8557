// AngelaMos | 2026
// store.go

package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrNotFound = errors.New("record not found")

const (
	KindTasks = "tasks"
	KindPosts = "posts"
	KindCart  = "cart"
)

// Backend persists raw record bytes by key. Load returns ErrNotFound for a
// key that was never saved.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Store namespaces JSON records by user and record kind. Failures never
// reach the caller: Get reports absent and Set drops the write, both after
// logging.
type Store struct {
	backend Backend
	prefix  string
	logger  *slog.Logger
}

func NewStore(backend Backend, prefix string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  logger,
	}
}

func (s *Store) Key(userEmail, kind string) string {
	return fmt.Sprintf("%s-%s-%s", s.prefix, kind, strings.ToLower(userEmail))
}

func (s *Store) Set(ctx context.Context, userEmail, kind string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("encode record failed",
			"kind", kind,
			"error", err,
		)
		return
	}

	if err := s.backend.Save(ctx, s.Key(userEmail, kind), data); err != nil {
		s.logger.Error("save record failed",
			"kind", kind,
			"error", err,
		)
	}
}

func (s *Store) load(ctx context.Context, userEmail, kind string) ([]byte, bool) {
	data, err := s.backend.Load(ctx, s.Key(userEmail, kind))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("load record failed",
				"kind", kind,
				"error", err,
			)
		}
		return nil, false
	}
	return data, true
}

// Get decodes the record stored for (userEmail, kind). It reports false
// when nothing was stored, the backend failed, or the stored bytes do not
// decode into T.
func Get[T any](ctx context.Context, s *Store, userEmail, kind string) (T, bool) {
	var out T

	data, ok := s.load(ctx, userEmail, kind)
	if !ok {
		return out, false
	}

	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Error("decode record failed",
			"kind", kind,
			"error", err,
		)
		var zero T
		return zero, false
	}

	return out, true
}
