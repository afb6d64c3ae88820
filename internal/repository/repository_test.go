package repository

import (
	"context"
	"testing"
	"time"

	"invoice-assistant/internal/models"
	"invoice-assistant/pkg/config"
	"invoice-assistant/pkg/database"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type RepositorySuite struct {
	suite.Suite
	ctx      context.Context
	db       *database.DB
	users    *UserRepository
	invoices *InvoiceRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	logger := zaptest.NewLogger(s.T())

	db, err := database.Open(s.ctx, &config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, logger)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.ctx, db, logger))

	s.db = db
	s.users = NewUserRepository(db, logger)
	s.invoices = NewInvoiceRepository(db, logger)
}

func (s *RepositorySuite) TearDownTest() {
	s.db.Close()
}

func (s *RepositorySuite) createUser(username string) *models.User {
	user := &models.User{Username: username, PasswordHash: "hash-" + username, Name: username}
	s.Require().NoError(s.users.Create(s.ctx, user))
	s.Require().NotZero(user.ID)
	return user
}

func (s *RepositorySuite) createInvoice(userID int64, vendor string) *models.Invoice {
	inv := &models.Invoice{
		Vendor: vendor,
		Date:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount: 12.5,
		Status: models.InvoiceStatusUnpaid,
		UserID: userID,
	}
	s.Require().NoError(s.invoices.Create(s.ctx, inv))
	return inv
}

func (s *RepositorySuite) TestUserLookup() {
	created := s.createUser("alice")

	got, err := s.users.GetByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal("hash-alice", got.PasswordHash)

	_, err = s.users.GetByUsername(s.ctx, "nobody")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestUsernameIsUnique() {
	s.createUser("alice")
	s.Error(s.users.Create(s.ctx, &models.User{Username: "alice", PasswordHash: "x"}))
}

func (s *RepositorySuite) TestUpdatePasswordHash() {
	user := s.createUser("alice")

	s.Require().NoError(s.users.UpdatePasswordHash(s.ctx, user.ID, "$2a$10$new"))
	got, err := s.users.GetByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("$2a$10$new", got.PasswordHash)

	s.ErrorIs(s.users.UpdatePasswordHash(s.ctx, user.ID+100, "x"), ErrNotFound)
}

func (s *RepositorySuite) TestListAndCountUsers() {
	s.createUser("alice")
	s.createUser("bob")

	users, err := s.users.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("alice", users[0].Username)

	count, err := s.users.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *RepositorySuite) TestInvoiceRoundTrip() {
	user := s.createUser("alice")
	number := "INV-7"
	category := "IT & Software"
	inv := &models.Invoice{
		InvoiceNumber: &number,
		Vendor:        "Acme",
		Date:          time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		Amount:        99.99,
		Status:        models.InvoiceStatusPaid,
		Category:      &category,
		UserID:        user.ID,
	}
	s.Require().NoError(s.invoices.Create(s.ctx, inv))

	got, err := s.invoices.GetByID(s.ctx, user.ID, inv.ID)
	s.Require().NoError(err)
	s.Equal(inv, got)
}

func (s *RepositorySuite) TestInvoiceWithoutOptionalFields() {
	user := s.createUser("alice")
	inv := s.createInvoice(user.ID, "Acme")

	got, err := s.invoices.GetByID(s.ctx, user.ID, inv.ID)
	s.Require().NoError(err)
	s.Nil(got.InvoiceNumber)
	s.Nil(got.Category)
	s.Equal("2024-05-01", got.Date.Format(models.DateLayout))
}

func (s *RepositorySuite) TestCreateRequiresOwner() {
	s.Error(s.invoices.Create(s.ctx, &models.Invoice{Vendor: "Acme", Status: models.InvoiceStatusUnpaid}))
}

func (s *RepositorySuite) TestInvoicesAreIsolatedPerUser() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	aliceInvoice := s.createInvoice(alice.ID, "Alice Vendor")
	for _, vendor := range []string{"Bob 1", "Bob 2", "Bob 3"} {
		s.createInvoice(bob.ID, vendor)
	}

	list, err := s.invoices.ListByUserID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("Alice Vendor", list[0].Vendor)

	list, err = s.invoices.ListByUserID(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Len(list, 3)

	_, err = s.invoices.GetByID(s.ctx, bob.ID, aliceInvoice.ID)
	s.ErrorIs(err, ErrNotFound)

	s.ErrorIs(s.invoices.UpdateStatus(s.ctx, bob.ID, aliceInvoice.ID, models.InvoiceStatusPaid), ErrNotFound)
	got, err := s.invoices.GetByID(s.ctx, alice.ID, aliceInvoice.ID)
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusUnpaid, got.Status)

	count, err := s.invoices.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, count)
}

func (s *RepositorySuite) TestListByUserIDEmpty() {
	user := s.createUser("alice")

	list, err := s.invoices.ListByUserID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *RepositorySuite) TestUpdateStatus() {
	user := s.createUser("alice")
	inv := s.createInvoice(user.ID, "Acme")

	s.Require().NoError(s.invoices.UpdateStatus(s.ctx, user.ID, inv.ID, models.InvoiceStatusPaid))
	got, err := s.invoices.GetByID(s.ctx, user.ID, inv.ID)
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusPaid, got.Status)
}

func (s *RepositorySuite) TestParseStoredDateAcceptsTimestamps() {
	for _, raw := range []string{"2024-05-01", "2024-05-01T00:00:00Z", "2024-05-01 00:00:00"} {
		got, err := parseStoredDate(raw)
		s.Require().NoError(err, raw)
		s.Equal("2024-05-01", got.Format(models.DateLayout))
	}

	_, err := parseStoredDate("01/05/2024")
	s.Error(err)
}
