// AngelaMos | 2026
// service_test.go

package farm

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
	"github.com/carterperez-dev/agriconnect/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(record.NewStore(record.NewMemoryBackend(), "agriconnect", logger))
}

func TestListDefaultsForNewUser(t *testing.T) {
	tasks := newTestService().List(context.Background(), "jane@x.com")

	require.Len(t, tasks, 3)
	assert.Equal(t, "Check irrigation in Field A", tasks[0].Text)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "Plant corn seeds", tasks[1].Text)
	assert.False(t, tasks[1].Completed)
	assert.Equal(t, "Order new fertilizer", tasks[2].Text)
}

func TestAddAppendsAndPersists(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, err := svc.Add(ctx, "jane@x.com", "  Repair the fence  ")
	require.NoError(t, err)
	assert.Equal(t, "Repair the fence", task.Text)
	assert.False(t, task.Completed)
	assert.NotEmpty(t, task.ID)

	tasks := svc.List(ctx, "jane@x.com")
	require.Len(t, tasks, 4)
	assert.Equal(t, *task, tasks[3])

	assert.Len(t, svc.List(ctx, "john@x.com"), 3, "other users keep the defaults")
}

func TestAddRejectsBlankText(t *testing.T) {
	_, err := newTestService().Add(context.Background(), "jane@x.com", "   ")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestToggle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, err := svc.Add(ctx, "jane@x.com", "Sell wheat")
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, "jane@x.com", task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = svc.Toggle(ctx, "jane@x.com", task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	first, err := svc.Toggle(ctx, "jane@x.com", "default-1")
	require.NoError(t, err)
	assert.False(t, first.Completed)
	assert.False(t, svc.List(ctx, "jane@x.com")[0].Completed)
}

func TestToggleUnknownTask(t *testing.T) {
	_, err := newTestService().Toggle(context.Background(), "jane@x.com", "nope")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestHandlerRoutes(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(newTestService()).RegisterRoutes(r, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithSessionUser(req.Context(),
				&middleware.SessionUser{ID: "u1", Name: "Jane", Email: "jane@x.com"}, "t")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	send := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	assert.Equal(t, http.StatusCreated, send(http.MethodPost, "/farm/tasks", `{"text":"Weed bed 3"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send(http.MethodPost, "/farm/tasks", `{"text":"  "}`).Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/farm/tasks/default-2/toggle", "").Code)
	assert.Equal(t, http.StatusNotFound, send(http.MethodPost, "/farm/tasks/missing/toggle", "").Code)

	rec := send(http.MethodGet, "/farm/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Weed bed 3")
}
