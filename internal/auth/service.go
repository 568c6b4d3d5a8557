// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/agriconnect/internal/core"
	"github.com/carterperez-dev/agriconnect/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("user not found or password incorrect")
	ErrEmailExists        = errors.New("user with this email already exists")
)

type UserInfo struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		name, email, passwordHash string,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type ServiceConfig struct {
	SessionTTL      time.Duration
	VerifyPasswords bool
	Logger          *slog.Logger
}

type Service struct {
	sessions        SessionStore
	jwt             *JWTManager
	userProvider    UserProvider
	sessionTTL      time.Duration
	verifyPasswords bool
	logger          *slog.Logger
}

func NewService(
	sessions SessionStore,
	jwt *JWTManager,
	userProvider UserProvider,
	cfg ServiceConfig,
) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:        sessions,
		jwt:             jwt,
		userProvider:    userProvider,
		sessionTTL:      cfg.SessionTTL,
		verifyPasswords: cfg.VerifyPasswords,
		logger:          logger,
	}
}

func (s *Service) Signup(
	ctx context.Context,
	req SignupRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("account created", "user_id", user.ID)

	return s.openSession(ctx, user)
}

// Login opens a session for the account registered under email. Unless
// password verification is enabled, any password is accepted.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			if s.verifyPasswords {
				//nolint:errcheck // keeps unknown emails as slow as wrong passwords
				_, _ = core.CheckPassword(req.Password, "")
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if s.verifyPasswords {
		if err := s.checkPassword(ctx, user, req.Password); err != nil {
			return nil, err
		}
	}

	return s.openSession(ctx, user)
}

func (s *Service) checkPassword(
	ctx context.Context,
	user *UserInfo,
	password string,
) error {
	if user.PasswordHash == "" {
		return ErrInvalidCredentials
	}

	check, err := core.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !check.Valid {
		return ErrInvalidCredentials
	}

	if check.Rehash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, check.Rehash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	return nil
}

// Logout ends the session named by token. Unknown or already ended
// sessions are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.VerifySessionToken(token)
	if err != nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// CheckSession reports the account behind token, or false when the token
// is missing, expired, unparseable or its session has ended.
func (s *Service) CheckSession(
	ctx context.Context,
	token string,
) (*UserInfo, bool) {
	if token == "" {
		return nil, false
	}

	session, err := s.lookup(ctx, token)
	if err != nil {
		return nil, false
	}

	return session.User(), true
}

func (s *Service) ResolveSession(
	ctx context.Context,
	token string,
) (*middleware.SessionUser, error) {
	session, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	return &middleware.SessionUser{
		ID:        session.UserID,
		Name:      session.Name,
		Email:     session.Email,
		SessionID: session.ID,
	}, nil
}

func (s *Service) lookup(ctx context.Context, token string) (*Session, error) {
	claims, err := s.jwt.VerifySessionToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Find(ctx, claims.SessionID)
	switch {
	case errors.Is(err, ErrCorruptSession):
		s.logger.Warn("discarding corrupt session",
			"session_id", claims.SessionID,
		)
		if delErr := s.sessions.Delete(ctx, claims.SessionID); delErr != nil {
			s.logger.Error("delete corrupt session failed",
				"session_id", claims.SessionID,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("lookup session: %w", core.ErrTokenRevoked)
	case errors.Is(err, core.ErrNotFound):
		return nil, fmt.Errorf("lookup session: %w", core.ErrTokenRevoked)
	case err != nil:
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if session.UserID != claims.UserID {
		return nil, fmt.Errorf("lookup session: %w", core.ErrTokenInvalid)
	}

	if session.IsExpired() {
		return nil, fmt.Errorf("lookup session: %w", core.ErrTokenExpired)
	}

	return session, nil
}

func (s *Service) openSession(
	ctx context.Context,
	user *UserInfo,
) (*AuthResponse, error) {
	now := time.Now().UTC()

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		UserSince: user.CreatedAt,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.jwt.CreateSessionToken(session)
	if err != nil {
		return nil, fmt.Errorf("create session token: %w", err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Session: SessionResponse{
			Token:     token,
			TokenType: "Bearer",
			ExpiresIn: int(s.sessionTTL / time.Second),
			ExpiresAt: session.ExpiresAt,
		},
	}, nil
}

var _ middleware.SessionResolver = (*Service)(nil)
