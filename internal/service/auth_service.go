package service

import (
	"context"
	"errors"
	"fmt"

	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/models"
	"invoice-assistant/internal/repository"
	"invoice-assistant/pkg/auth"

	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Authenticate verifies the credentials and upgrades the stored hash when it is
// plaintext or a deprecated scheme. Every failure is ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info("Login for unknown user", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	verdict := auth.CheckPassword(password, user.PasswordHash)
	switch verdict {
	case auth.Match:
		if auth.NeedsRehash(user.PasswordHash) {
			if err := s.rehash(ctx, user, password); err != nil {
				s.logger.Warn("Failed to upgrade password hash", zap.String("username", username), zap.Error(err))
			}
		}
		return user, nil

	case auth.UnknownScheme:
		if !auth.CheckPasswordHash(password, user.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
		// Plaintext from an early release: only succeed once the hash is persisted.
		if err := s.rehash(ctx, user, password); err != nil {
			s.logger.Error("Failed to migrate plaintext password", zap.String("username", username), zap.Error(err))
			return nil, ErrInvalidCredentials
		}
		s.logger.Info("Migrated plaintext password", zap.String("username", username))
		return user, nil

	default:
		s.logger.Info("Password check failed", zap.String("username", username), zap.Stringer("verdict", verdict))
		return nil, ErrInvalidCredentials
	}
}

func (s *AuthService) rehash(ctx context.Context, user *models.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateToken(user.Username)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}

// UserFromToken resolves a bearer token to the user it was issued for.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	username, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		// Token outlived its user.
		return nil, auth.ErrInvalidToken
	}
	return user, err
}

func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.rehash(ctx, user, req.NewPassword); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info("Password reset", zap.String("username", user.Username))
	return &dto.ResetPasswordResponse{
		Message:  "Password reset",
		Username: user.Username,
	}, nil
}

// CreateUser stores a new user with a bcrypt hash of password.
func (s *AuthService) CreateUser(ctx context.Context, username, password, name string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: hash, Name: name}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return user, nil
}
