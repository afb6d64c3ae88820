package service

import (
	"context"
	"fmt"

	"invoice-assistant/internal/repository"

	"go.uber.org/zap"
)

type demoUser struct {
	username string
	password string
	name     string
}

var demoUsers = []demoUser{
	{"user1", "password1", "Alice"},
	{"user2", "password2", "Bob"},
}

type SeedService struct {
	userRepo    *repository.UserRepository
	authService *AuthService
	logger      *zap.Logger
}

func NewSeedService(userRepo *repository.UserRepository, authService *AuthService, logger *zap.Logger) *SeedService {
	return &SeedService{
		userRepo:    userRepo,
		authService: authService,
		logger:      logger,
	}
}

// Seed inserts the demo users into an empty users table and reports how many it created.
func (s *SeedService) Seed(ctx context.Context) (int, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		s.logger.Debug("Users already exist, skipping seed", zap.Int("count", count))
		return 0, nil
	}

	for _, u := range demoUsers {
		if _, err := s.authService.CreateUser(ctx, u.username, u.password, u.name); err != nil {
			return 0, err
		}
	}

	s.logger.Info("Seeded demo users", zap.Int("count", len(demoUsers)))
	return len(demoUsers), nil
}
