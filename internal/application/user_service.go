package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	userDomain "github.com/shareit/service-rental/internal/domain/user"
	"github.com/shareit/service-rental/internal/platform/auth"
	"github.com/shareit/service-rental/internal/platform/domain"
)

// CreateUserRequest is the request DTO for signing up.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// UpdateUserRequest is a partial update. Omitted fields keep their value.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// TokenRequest asks for an access token for a registered email.
type TokenRequest struct {
	Email string `json:"email" binding:"required"`
}

// UserDTO is the API response representation of a user.
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// TokenDTO is an issued access token.
type TokenDTO struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserService implements user account use cases.
type UserService struct {
	repo   userDomain.UserRepository
	tokens *auth.JWTManager
	clock  Clock
	logger *zap.Logger
}

// NewUserService creates a new UserService. tokens may be nil when JWT auth is off.
func NewUserService(repo userDomain.UserRepository, tokens *auth.JWTManager, clock Clock, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, clock: clock, logger: logger}
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	u, err := userDomain.NewUser(req.Name, req.Email, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", u.ID().String()))
	dto := toUserDTO(u)
	return &dto, nil
}

// UpdateUser merges the non-nil fields of req into the stored user.
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch := userDomain.Patch{Name: req.Name, Email: req.Email}
	if patch.Name == nil && patch.Email == nil {
		dto := toUserDTO(u)
		return &dto, nil
	}

	updated, err := u.Apply(patch, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	dto := toUserDTO(updated)
	return &dto, nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// ListUsers returns all users in registration order.
func (s *UserService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos, nil
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", userID.String()))
	return nil
}

// IssueToken signs an access token for the user registered under email.
func (s *UserService) IssueToken(ctx context.Context, req TokenRequest) (*TokenDTO, error) {
	if s.tokens == nil {
		return nil, domain.NewForbiddenError("token auth is disabled")
	}
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}

	token, exp, err := s.tokens.Issue(u.ID(), u.Email())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &TokenDTO{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp}, nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{ID: u.ID(), Name: u.Name(), Email: u.Email()}
}

// requireUser returns NOT_FOUND when userID is not registered.
func requireUser(ctx context.Context, users userDomain.UserRepository, userID uuid.UUID) error {
	ok, err := users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError("User", userID.String())
	}
	return nil
}
