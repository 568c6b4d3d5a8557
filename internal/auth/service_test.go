// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/carterperez-dev/agriconnect/internal/config"
	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*UserInfo)}
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (m *memoryUsers) Create(
	ctx context.Context,
	name, email, passwordHash string,
) (*UserInfo, error) {
	if _, err := m.GetByEmail(ctx, email); err == nil {
		return nil, core.ErrDuplicateKey
	}

	u := &UserInfo{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	m.mu.Lock()
	m.users[u.ID] = u
	m.mu.Unlock()

	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath: priv,
		PublicKeyPath:  pub,
		Issuer:         "agriconnect-test",
		Audience:       "agriconnect-test",
	})
	require.NoError(t, err)
	return m
}

type fixture struct {
	svc      *Service
	sessions *MemorySessionStore
	users    *memoryUsers
}

func newFixture(t *testing.T, verify bool) fixture {
	t.Helper()

	sessions := NewMemorySessionStore()
	users := newMemoryUsers()
	svc := NewService(sessions, newTestJWT(t), users, ServiceConfig{
		SessionTTL:      time.Hour,
		VerifyPasswords: verify,
	})

	return fixture{svc: svc, sessions: sessions, users: users}
}

func TestLoginAcceptsAnyPasswordAndIgnoresEmailCase(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	signed, err := f.svc.Signup(ctx, SignupRequest{
		Name: "Jane", Email: "jane@x.com", Password: "pw",
	})
	require.NoError(t, err)

	logged, err := f.svc.Login(ctx, LoginRequest{
		Email: "JANE@X.COM", Password: "anything",
	})
	require.NoError(t, err)

	assert.Equal(t, signed.User.ID, logged.User.ID)
	assert.Equal(t, "Jane", logged.User.Name)
	assert.NotEqual(t, signed.Session.Token, logged.Session.Token)
	assert.Equal(t, "Bearer", logged.Session.TokenType)
}

func TestSignupRejectsExistingEmail(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "pw"})
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "Jane@X.com", Password: "pw"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Login(context.Background(), LoginRequest{
		Email: "nobody@x.com", Password: "pw",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "user not found or password incorrect", err.Error())
}

func TestLoginVerifiesPasswordsWhenEnabled(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "jane@x.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "jane@x.com", Password: "correct horse"})
	require.NoError(t, err)
}

func TestCheckSessionAfterLogout(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	resp, err := f.svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "pw"})
	require.NoError(t, err)

	user, ok := f.svc.CheckSession(ctx, resp.Session.Token)
	require.True(t, ok)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "jane@x.com", user.Email)

	require.NoError(t, f.svc.Logout(ctx, resp.Session.Token))

	_, ok = f.svc.CheckSession(ctx, resp.Session.Token)
	assert.False(t, ok)

	_, err = f.svc.ResolveSession(ctx, resp.Session.Token)
	require.ErrorIs(t, err, core.ErrTokenRevoked)

	require.NoError(t, f.svc.Logout(ctx, resp.Session.Token), "second logout is a no-op")
}

func TestCheckSessionRejectsBadTokens(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, ok := f.svc.CheckSession(ctx, token)
		assert.False(t, ok, "token %q", token)
	}

	other := newFixture(t, false)
	resp, err := other.svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "pw"})
	require.NoError(t, err)

	_, ok := f.svc.CheckSession(ctx, resp.Session.Token)
	assert.False(t, ok, "token signed by another key")
}

func TestCorruptSessionIsDiscarded(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	resp, err := f.svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "pw"})
	require.NoError(t, err)

	claims, err := f.svc.jwt.VerifySessionToken(resp.Session.Token)
	require.NoError(t, err)

	f.sessions.mu.Lock()
	f.sessions.sessions[claims.SessionID] = []byte("{garbage")
	f.sessions.mu.Unlock()

	_, ok := f.svc.CheckSession(ctx, resp.Session.Token)
	assert.False(t, ok)

	_, err = f.sessions.Find(ctx, claims.SessionID)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestExpiredSessionIsAbsent(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	resp, err := f.svc.Signup(ctx, SignupRequest{Name: "Jane", Email: "jane@x.com", Password: "pw"})
	require.NoError(t, err)

	claims, err := f.svc.jwt.VerifySessionToken(resp.Session.Token)
	require.NoError(t, err)

	stale := &Session{
		ID:        claims.SessionID,
		UserID:    claims.UserID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.sessions.Create(ctx, stale))

	_, ok := f.svc.CheckSession(ctx, resp.Session.Token)
	assert.False(t, ok)
}

func TestHandlerSignupThenSession(t *testing.T) {
	f := newFixture(t, false)
	h := NewHandler(f.svc)

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Authenticator(f.svc))

	body := `{"name":"Jane","email":"jane@x.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var signup struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&signup))
	token := signup.Data.Session.Token
	require.NotEmpty(t, token)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Data SessionStatusResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.True(t, status.Data.Authenticated)
	require.NotNil(t, status.Data.User)
	assert.Equal(t, "Jane", status.Data.User.Name)

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	status = struct {
		Data SessionStatusResponse `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.False(t, status.Data.Authenticated)
}

func TestHandlerLoginFailureMessage(t *testing.T) {
	f := newFixture(t, false)
	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r, middleware.Authenticator(f.svc))

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ghost@x.com","password":"pw"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found or password incorrect")
}

func TestJWKSPublishesSigningKey(t *testing.T) {
	m := newTestJWT(t)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var set struct {
		Keys []struct {
			Kty string `json:"kty"`
			Crv string `json:"crv"`
			Kid string `json:"kid"`
			D   string `json:"d"`
		} `json:"keys"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, "EC", set.Keys[0].Kty)
	assert.Equal(t, "P-256", set.Keys[0].Crv)
	assert.NotEmpty(t, set.Keys[0].Kid)
	assert.Empty(t, set.Keys[0].D, "private component must not be published")
}
