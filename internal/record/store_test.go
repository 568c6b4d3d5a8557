// AngelaMos | 2026
// store_test.go

package record

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/carterperez-dev/agriconnect/internal/config"
	"github.com/carterperez-dev/agriconnect/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

type task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteBackend(t *testing.T) Backend {
	t.Helper()

	db, err := core.NewDatabase(context.Background(), config.DatabaseConfig{
		URL: "sqlite::memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return NewSQLBackend(db.DB)
}

func TestStoreRoundTrip(t *testing.T) {
	backends := map[string]func(t *testing.T) Backend{
		"memory": func(*testing.T) Backend { return NewMemoryBackend() },
		"sqlite": newSQLiteBackend,
	}

	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(mk(t), "agriconnect", quietLogger())

			_, ok := Get[[]task](ctx, s, "jane@x.com", KindTasks)
			assert.False(t, ok, "never-written key must be absent")

			want := []task{{ID: "1", Text: "Plant corn seeds"}}
			s.Set(ctx, "jane@x.com", KindTasks, want)

			got, ok := Get[[]task](ctx, s, "Jane@X.com", KindTasks)
			require.True(t, ok)
			assert.Equal(t, want, got)

			want[0].Completed = true
			s.Set(ctx, "jane@x.com", KindTasks, want)

			got, ok = Get[[]task](ctx, s, "jane@x.com", KindTasks)
			require.True(t, ok)
			assert.True(t, got[0].Completed)
		})
	}
}

func TestStoreKeysAreScopedByUserAndKind(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := NewStore(backend, "agriconnect", quietLogger())

	assert.Equal(t, "agriconnect-cart-jane@x.com", s.Key("JANE@x.com", KindCart))

	s.Set(ctx, "jane@x.com", KindTasks, []task{{ID: "1"}})

	_, ok := Get[[]task](ctx, s, "john@x.com", KindTasks)
	assert.False(t, ok)

	_, ok = Get[[]task](ctx, s, "jane@x.com", KindPosts)
	assert.False(t, ok)
}

func TestStoreUndecodableRecordIsAbsent(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := NewStore(backend, "agriconnect", quietLogger())

	require.NoError(t, backend.Save(ctx, s.Key("jane@x.com", KindTasks), []byte("{not json")))

	got, ok := Get[[]task](ctx, s, "jane@x.com", KindTasks)
	assert.False(t, ok)
	assert.Nil(t, got)
}

type failingBackend struct{}

func (failingBackend) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingBackend) Save(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestStoreSwallowsBackendFailures(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingBackend{}, "agriconnect", quietLogger())

	assert.NotPanics(t, func() {
		s.Set(ctx, "jane@x.com", KindCart, map[string]int{"a": 1})
	})

	_, ok := Get[map[string]int](ctx, s, "jane@x.com", KindCart)
	assert.False(t, ok)
}
