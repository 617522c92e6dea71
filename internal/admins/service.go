package admins

import (
	stdErrors "errors"
	"strings"
	"time"

	"context"

	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/auth"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/security"
)

// LoginResult carries the minted token and its expiry.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Email       string    `json:"email"`
}

// ServiceParams groups dependencies for the admin auth service.
type ServiceParams struct {
	Repo   *Repository
	JWT    config.JWTConfig
	Logger *logger.Logger
}

// Service authenticates admin panel users.
type Service interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
}

type service struct {
	repo   *Repository
	jwt    config.JWTConfig
	logger *logger.Logger
}

// NewService builds the admin auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New(errors.CodeValidation, "admins repo is required")
	}
	if params.Logger == nil {
		return nil, errors.New(errors.CodeValidation, "logger is required")
	}
	return &service{
		repo:   params.Repo,
		jwt:    params.JWT,
		logger: params.Logger,
	}, nil
}

// Login verifies the credentials and mints an access token. Unknown emails
// and wrong passwords return the same unauthorized error.
func (s *service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, errors.New(errors.CodeValidation, "email and password are required")
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{}, errors.New(errors.CodeUnauthorized, "invalid credentials")
		}
		return LoginResult{}, errors.Wrap(errors.CodeDependency, err, "loading admin")
	}
	if !admin.IsActive {
		return LoginResult{}, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return LoginResult{}, errors.Wrap(errors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return LoginResult{}, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now()
	token, err := auth.MintAccessToken(auth.AccessTokenPayload{
		AdminID: admin.ID,
		Email:   admin.Email,
	}, s.jwt, now)
	if err != nil {
		return LoginResult{}, errors.Wrap(errors.CodeInternal, err, "minting token")
	}

	if err := s.repo.TouchLastLogin(ctx, admin.ID, now); err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "admin_id", admin.ID.String()), "failed to stamp last login")
	}

	return LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwt.AccessTokenTTL()),
		Email:       admin.Email,
	}, nil
}
