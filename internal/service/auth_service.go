package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"storerating/internal/auth"
	apperrors "storerating/internal/errors"
	"storerating/internal/metrics"
	"storerating/internal/model"
	"storerating/internal/repository"
	"storerating/internal/validation"
)

// IssuedSession is a freshly started session, ready to be set as a cookie.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input NewUser) (*model.User, *IssuedSession, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, *IssuedSession, error)
	ResolveSession(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
}

type authService struct {
	users    UserService
	userRepo repository.UserRepository
	tokens   *auth.TokenService
	sessions auth.SessionStore
	log      zerolog.Logger
}

// Ensure authService can back the Authenticate middleware
var _ auth.SessionResolver = (*authService)(nil)

// NewAuthService creates a new authentication service.
func NewAuthService(users UserService, userRepo repository.UserRepository, tokens *auth.TokenService, sessions auth.SessionStore, log zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		userRepo: userRepo,
		tokens:   tokens,
		sessions: sessions,
		log:      log,
	}
}

// Register creates a user account and signs it in. The role is always user.
func (s *authService) Register(ctx context.Context, input NewUser) (*model.User, *IssuedSession, error) {
	input.Role = model.RoleUser
	user, err := s.users.CreateUser(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordSession("register")
	s.log.Info().Uint("user_id", user.ID).Msg("user registered")
	return user, session, nil
}

// Authenticate checks the credentials without revealing which one was wrong.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *IssuedSession, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordSession("login")
	s.log.Debug().Uint("user_id", user.ID).Msg("user logged in")
	return user, session, nil
}

func (s *authService) startSession(ctx context.Context, user *model.User) (*IssuedSession, error) {
	sessionID, token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	record := auth.Session{UserID: user.ID, IssuedAt: time.Now().UTC()}
	if err := s.sessions.Save(ctx, sessionID, record, s.tokens.TTL()); err != nil {
		return nil, err
	}
	return &IssuedSession{Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveSession maps a cookie value to its user. Any missing piece (bad
// token, expired or deleted session, deleted user) is ErrUnauthenticated.
func (s *authService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		metrics.RecordSession("resolve_failed")
		return nil, apperrors.ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		metrics.RecordSession("resolve_failed")
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		s.log.Warn().Err(err).Msg("session lookup failed")
		return nil, err
	}
	if session.UserID != claims.UserID {
		metrics.RecordSession("resolve_failed")
		return nil, apperrors.ErrUnauthenticated
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		metrics.RecordSession("resolve_failed")
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// Logout destroys the session behind token. Having no session is not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return err
	}
	metrics.RecordSession("logout")
	return nil
}

// ChangePassword re-verifies the current password before checking the
// complexity of the new one.
func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(currentPassword, user.PasswordHash) {
		return apperrors.ErrIncorrectPassword
	}
	if !validation.StrongPassword(newPassword) {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.users.InvalidateUser(ctx, userID)
	s.log.Info().Uint("user_id", userID).Msg("password changed")
	return nil
}
