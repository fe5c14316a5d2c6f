// Package users registers and authenticates dashboard accounts
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/leadboard/pkg/auth"
	"github.com/jordanlanch/leadboard/pkg/domain"
	"github.com/jordanlanch/leadboard/pkg/logger"
	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/validation"
)

// Service handles account business logic
type Service struct {
	repo      domain.UserRepository
	validator *validator.Validate
	logger    logger.Logger
	now       func() time.Time
}

// NewService creates a new user service
func NewService(repo domain.UserRepository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		validator: validation.New(),
		logger:    log.With("component", "users"),
		now:       time.Now,
	}
}

// Register creates an account. Missing fields and taken emails are validation errors.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.validator.Struct(req); err != nil {
		return nil, domain.NewFieldValidationError("Invalid registration data", validation.Fields(err))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewFieldValidationError("Email is already registered", map[string]string{"email": "is already registered"})
		}
		return nil, domain.NewInternalError(err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords are
// indistinguishable NOT_AUTHENTICATED errors.
func (s *Service) Authenticate(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.validator.Struct(req); err != nil {
		return nil, domain.NewFieldValidationError("Invalid login data", validation.Fields(err))
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, domain.NewInternalError(err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("failed login", "user_id", user.ID)
		return nil, invalidCredentials()
	}
	return user, nil
}

// GetByID returns the account behind a session
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, domain.NewInternalError(err)
	}
	return user, nil
}

func invalidCredentials() error {
	return &domain.DomainError{
		Code:    domain.ErrCodeNotAuthenticated,
		Message: "Invalid email or password",
	}
}
