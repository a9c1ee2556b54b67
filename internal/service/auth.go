// Package service contains the business logic layer.
//
// This file implements sign-in, registration and session resolution. The
// backend verifies credentials; this service turns its bearer token into a
// cookie-backed session.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DukeRupert/clientdesk/internal/backend"
	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/metrics"
	"github.com/DukeRupert/clientdesk/internal/session"
	"github.com/DukeRupert/clientdesk/internal/validation"
)

const (
	// DefaultSessionDuration is used when the backend token carries no
	// expiry and none is configured.
	DefaultSessionDuration = 24 * time.Hour

	// MinSessionDuration and MaxSessionDuration bound every session.
	MinSessionDuration = 15 * time.Minute
	MaxSessionDuration = 30 * 24 * time.Hour
)

// AuthBackend is the part of the REST backend the auth service needs.
type AuthBackend interface {
	Login(ctx context.Context, in domain.LoginInput) (*backend.AuthResponse, error)
	Register(ctx context.Context, in domain.RegisterInput) error
}

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Login validates the credentials with the backend and creates a
	// session. Returns domain.EINVALID for malformed input and the
	// backend's error otherwise.
	Login(ctx context.Context, in domain.LoginInput, meta domain.SessionMeta) (*domain.LoginResult, error)

	// Register creates an account on the backend.
	Register(ctx context.Context, in domain.RegisterInput) error

	// Logout deletes the session behind rawToken. It is idempotent.
	Logout(ctx context.Context, rawToken string) error

	// Resolve returns the session behind rawToken.
	// Returns domain.EUNAUTHORIZED if it is unknown or expired.
	Resolve(ctx context.Context, rawToken string) (*domain.Session, error)
}

// AuthServiceConfig holds configuration for the auth service.
type AuthServiceConfig struct {
	// SessionDuration applies when the backend token has no exp claim.
	// Zero uses DefaultSessionDuration.
	SessionDuration time.Duration

	// Forget, if set, is called with the ID of a session Resolve found
	// expired and deleted.
	Forget func(sessionID uuid.UUID)
}

type authService struct {
	backend   AuthBackend
	store     session.Store
	validator *validation.Validator
	logger    *slog.Logger
	duration  time.Duration
	forget    func(sessionID uuid.UUID)
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(b AuthBackend, store session.Store, v *validation.Validator, logger *slog.Logger, cfg AuthServiceConfig) AuthService {
	return &authService{
		backend:   b,
		store:     store,
		validator: v,
		logger:    logger,
		duration:  normalizeSessionDuration(cfg.SessionDuration),
		forget:    cfg.Forget,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, in domain.LoginInput, meta domain.SessionMeta) (*domain.LoginResult, error) {
	const op = "auth.login"

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Struct(op, in); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	resp, err := s.backend.Login(ctx, in)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
		s.logger.Info("login rejected", "email", in.Email, "code", domain.ErrorCode(err))
		return nil, err
	}

	rawToken, err := session.GenerateToken()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to generate session token")
	}

	now := s.now()
	user := resp.User
	if user.Email == "" {
		user.Email = in.Email
	}
	sess := &domain.Session{
		ID:        uuid.New(),
		Token:     resp.Token,
		User:      user,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		ExpiresAt: now.Add(s.sessionLifetime(resp.Token, now)),
		CreatedAt: now,
	}

	if err := s.store.Create(ctx, session.HashToken(rawToken), sess); err != nil {
		return nil, domain.Internal(err, op, "Failed to create session")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("user logged in", "session_id", sess.ID, "email", user.Email)

	return &domain.LoginResult{Session: sess, RawToken: rawToken}, nil
}

func (s *authService) Register(ctx context.Context, in domain.RegisterInput) error {
	const op = "auth.register"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Struct(op, in); err != nil {
		return err
	}

	if err := s.backend.Register(ctx, in); err != nil {
		s.logger.Info("registration rejected", "email", in.Email, "code", domain.ErrorCode(err))
		return err
	}

	s.logger.Info("user registered", "email", in.Email)
	return nil
}

func (s *authService) Logout(ctx context.Context, rawToken string) error {
	const op = "auth.logout"

	if !session.ValidTokenFormat(rawToken) {
		return nil
	}
	if err := s.store.Delete(ctx, session.HashToken(rawToken)); err != nil {
		return domain.Internal(err, op, "Failed to delete session")
	}
	return nil
}

func (s *authService) Resolve(ctx context.Context, rawToken string) (*domain.Session, error) {
	const op = "auth.resolve"

	if !session.ValidTokenFormat(rawToken) {
		return nil, domain.Unauthorized(op, "Sessão inválida")
	}

	hash := session.HashToken(rawToken)
	sess, err := s.store.Get(ctx, hash)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, domain.Unauthorized(op, "Sessão inválida")
		}
		return nil, domain.Internal(err, op, "Failed to load session")
	}

	if sess.Expired(s.now()) {
		if err := s.store.Delete(ctx, hash); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", sess.ID, "error", err)
		}
		if s.forget != nil {
			s.forget(sess.ID)
		}
		return nil, domain.Unauthorized(op, "Sessão expirada")
	}
	return sess, nil
}

// sessionLifetime follows the backend token's exp claim when it has one.
// The signature is not verified here; the backend does that on every call.
func (s *authService) sessionLifetime(token string, now time.Time) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return s.duration
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return s.duration
	}
	return clampSessionDuration(exp.Sub(now))
}

// normalizeSessionDuration applies the default to zero and clamps the rest.
func normalizeSessionDuration(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultSessionDuration
	}
	return clampSessionDuration(d)
}

func clampSessionDuration(d time.Duration) time.Duration {
	if d < MinSessionDuration {
		return MinSessionDuration
	}
	if d > MaxSessionDuration {
		return MaxSessionDuration
	}
	return d
}
