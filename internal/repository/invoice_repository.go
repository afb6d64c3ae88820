package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"invoice-assistant/internal/models"
	"invoice-assistant/pkg/database"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

var invoiceColumns = []string{"id", "invoice_number", "vendor", "date", "amount", "status", "category", "user_id"}

// InvoiceRepository only exposes owner-scoped reads and writes: every query
// that touches invoice rows takes the owning user's ID.
type InvoiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewInvoiceRepository(db *database.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the invoice and fills in its generated ID.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.UserID == 0 {
		return errors.New("invoice has no owner")
	}

	query, args, err := r.db.Builder().
		Insert("invoices").
		Columns("invoice_number", "vendor", "date", "amount", "status", "category", "user_id").
		Values(inv.InvoiceNumber, inv.Vendor, inv.Date.Format(models.DateLayout), inv.Amount, inv.Status, inv.Category, inv.UserID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	return r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&inv.ID)
}

func (r *InvoiceRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Invoice, error) {
	query, args, err := r.db.Builder().
		Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []*models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

func (r *InvoiceRepository) GetByID(ctx context.Context, userID, invoiceID int64) (*models.Invoice, error) {
	query, args, err := r.db.Builder().
		Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"id": invoiceID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	inv, err := scanInvoice(r.db.SQL.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

// UpdateStatus changes the status of an invoice owned by userID; ErrNotFound otherwise.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, userID, invoiceID int64, status string) error {
	query, args, err := r.db.Builder().
		Update("invoices").
		Set("status", status).
		Where(squirrel.Eq{"id": invoiceID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Count is the only aggregate across owners; it backs the admin schema report.
func (r *InvoiceRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.db.Builder().Select("COUNT(*)").From("invoices").ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var (
		inv           models.Invoice
		invoiceNumber sql.NullString
		category      sql.NullString
		date          string
	)
	if err := row.Scan(&inv.ID, &invoiceNumber, &inv.Vendor, &date, &inv.Amount, &inv.Status, &category, &inv.UserID); err != nil {
		return nil, err
	}

	parsed, err := parseStoredDate(date)
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", inv.ID, err)
	}
	inv.Date = parsed

	if invoiceNumber.Valid {
		inv.InvoiceNumber = &invoiceNumber.String
	}
	if category.Valid {
		inv.Category = &category.String
	}

	return &inv, nil
}

// parseStoredDate accepts the canonical layout plus the timestamp forms older rows
// may come back as when the column was declared DATE.
func parseStoredDate(s string) (time.Time, error) {
	for _, layout := range []string{models.DateLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized stored date %q", s)
}
