// AngelaMos | 2026
// core_test.go

package core

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"github.com/carterperez-dev/agriconnect/internal/config"
)

func TestDriverFor(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
	}{
		{"postgres://u:p@localhost/agri", "pgx", "postgres://u:p@localhost/agri"},
		{"sqlite://data/agri.db", "sqlite", "data/agri.db"},
		{"sqlite:file::memory:", "sqlite", "file::memory:"},
	}

	for _, tt := range tests {
		driver, dsn := DriverFor(tt.url)
		assert.Equal(t, tt.wantDriver, driver, tt.url)
		assert.Equal(t, tt.wantDSN, dsn, tt.url)
	}
}

func TestJSONErrorUsesAppErrorStatus(t *testing.T) {
	rec := httptest.NewRecorder()

	JSONError(rec, fmt.Errorf("wrapped: %w", DuplicateError("email")))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "DUPLICATE", body.Error.Code)
	assert.Equal(t, "email already exists", body.Error.Message)
}

func TestJSONErrorHidesPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	JSONError(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	OK(rec, map[string]string{"name": "Mandi A"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"name":"Mandi A"}}`, rec.Body.String())
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("model returned nothing")
	err := UpstreamError("could not find markets", cause)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
}

func TestFormatValidationError(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Quantity int    `validate:"gt=0"`
	}

	err := validator.New().Struct(req{Email: "nope", Quantity: 0})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "quantity must be greater than 0")
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	check, err := CheckPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Empty(t, check.Rehash)

	check, err = CheckPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, check.Valid)

	check, err = CheckPassword("anything", "")
	require.NoError(t, err)
	assert.False(t, check.Valid)
}

func TestCheckPasswordRehashesStaleParams(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	stale := strings.Replace(hash, "m=65536,t=1,p=4", "m=65536,t=2,p=4", 1)
	require.NotEqual(t, hash, stale)

	// re-derive the key under the stale params
	p, salt, _, err := decodeHash(stale)
	require.NoError(t, err)
	key := argon2.IDKey([]byte("correct horse"), salt, p.time, p.memory, p.threads, p.keyLen)
	parts := strings.Split(stale, "$")
	parts[5] = base64.RawStdEncoding.EncodeToString(key)
	stale = strings.Join(parts, "$")

	check, err := CheckPassword("correct horse", stale)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	require.NotEmpty(t, check.Rehash)
	assert.Contains(t, check.Rehash, "m=65536,t=1,p=4")
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, h := range []string{"plain", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=1$m=1,t=1,p=1$a$b"} {
		_, err := VerifyPassword("pw", h)
		assert.Error(t, err, h)
	}
}

func TestTelemetryDisabledIsNoop(t *testing.T) {
	tel, err := NewTelemetry(t.Context(), config.OtelConfig{
		Enabled:     true,
		ServiceName: "agriconnect",
	}, config.AppConfig{})
	require.NoError(t, err)

	assert.False(t, tel.Enabled, "no endpoint means no export")
	_, span := tel.Tracer.Start(t.Context(), "op")
	span.End()
	assert.Empty(t, TraceIDFromContext(t.Context()))
	require.NoError(t, tel.Shutdown(t.Context()))
}

func TestNewExporterBuildsGRPCClient(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		exp, err := newExporter(t.Context(), config.OtelConfig{
			Endpoint: "127.0.0.1:4317",
			Insecure: insecure,
		})
		require.NoError(t, err)
		require.NotNil(t, exp)
		require.NoError(t, exp.Shutdown(t.Context()))
	}
}

func TestSampler(t *testing.T) {
	for _, rate := range []float64{-1, 0, 1.5} {
		assert.Contains(t, sampler(rate).Description(), "TraceIDRatioBased{0.1}")
	}
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased{0.5}")
}

func TestNewRedisGivesUpOnUnreachableServer(t *testing.T) {
	_, err := NewRedis(t.Context(), config.RedisConfig{
		URL:      "redis://127.0.0.1:1/0",
		PoolSize: 1,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = NewRedis(ctx, config.RedisConfig{
		URL:            "redis://127.0.0.1:1/0",
		PoolSize:       1,
		ConnectRetries: 5,
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
