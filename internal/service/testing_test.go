package service

import (
	"context"
	"testing"

	"invoice-assistant/internal/repository"
	"invoice-assistant/pkg/config"
	"invoice-assistant/pkg/database"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testStores struct {
	db       *database.DB
	users    *repository.UserRepository
	invoices *repository.InvoiceRepository
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	db, err := database.Open(ctx, &config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, logger))

	return &testStores{
		db:       db,
		users:    repository.NewUserRepository(db, logger),
		invoices: repository.NewInvoiceRepository(db, logger),
	}
}
