package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"storerating/internal/auth"
	"storerating/internal/cache"
	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// NewUser is the input for creating an account.
type NewUser struct {
	Email    string
	Password string
	Name     string
	Address  string
	Role     model.Role
}

// UserService exposes domain operations.
type UserService interface {
	CreateUser(ctx context.Context, input NewUser) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error)
	InvalidateUser(ctx context.Context, id uint)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	log   zerolog.Logger
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, log zerolog.Logger) UserService {
	return &userService{repo: repo, cache: cache, log: log}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// CreateUser hashes the password and persists the account. An empty role
// defaults to user.
func (s *userService) CreateUser(ctx context.Context, input NewUser) (*model.User, error) {
	role := input.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Address:      input.Address,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

// GetUser reads through the user cache. Cached entries carry no password hash.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	return s.repo.List(ctx, filter)
}

func (s *userService) InvalidateUser(ctx context.Context, id uint) {
	s.cache.Delete(ctx, s.cacheKey(id))
}
