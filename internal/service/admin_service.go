package service

import (
	"context"
	"fmt"

	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/repository"
	"invoice-assistant/pkg/auth"
	"invoice-assistant/pkg/database"

	"go.uber.org/zap"
)

// AdminService backs the /debug endpoints.
type AdminService struct {
	db          *database.DB
	userRepo    *repository.UserRepository
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

func NewAdminService(db *database.DB, userRepo *repository.UserRepository, invoiceRepo *repository.InvoiceRepository, logger *zap.Logger) *AdminService {
	return &AdminService{
		db:          db,
		userRepo:    userRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

func (s *AdminService) Schema(ctx context.Context) (*dto.SchemaResponse, error) {
	columns, err := s.db.Columns(ctx, "invoices")
	if err != nil {
		return nil, fmt.Errorf("failed to read invoices schema: %w", err)
	}

	version, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	total, err := s.invoiceRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	return &dto.SchemaResponse{
		Schema:        columns,
		SchemaVersion: version,
		TotalInvoices: total,
	}, nil
}

// Users lists accounts with the scheme of their stored hash, never the hash itself.
func (s *AdminService) Users(ctx context.Context) (*dto.UsersResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]dto.DebugUser, len(users))
	for i, u := range users {
		result[i] = dto.DebugUser{
			ID:         u.ID,
			Username:   u.Username,
			Name:       u.Name,
			HashScheme: auth.Scheme(u.PasswordHash),
		}
	}

	return &dto.UsersResponse{Users: result, Count: len(result)}, nil
}
