// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/agriconnect/internal/core"
)

const (
	SessionUserKey contextKey = "session_user"
	TokenKey       contextKey = "session_token"
)

// SessionUser is the authenticated account attached to a request.
type SessionUser struct {
	ID        string
	Name      string
	Email     string
	SessionID string
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*SessionUser, error)
}

func Authenticator(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			user, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionUser(r.Context(), user, token)))
		})
	}
}

// RequireAPIKey guards operator routes with a static shared key sent in
// the X-Admin-Key header.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Admin-Key")
			if key == "" ||
				subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				core.Forbidden(w, "invalid admin key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func WithSessionUser(
	ctx context.Context,
	user *SessionUser,
	token string,
) context.Context {
	ctx = context.WithValue(ctx, SessionUserKey, user)
	return context.WithValue(ctx, TokenKey, token)
}

func GetSessionUser(ctx context.Context) *SessionUser {
	if user, ok := ctx.Value(SessionUserKey).(*SessionUser); ok {
		return user
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if user := GetSessionUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

func GetToken(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}
