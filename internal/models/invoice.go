package models

import "time"

const (
	InvoiceStatusPaid   = "Paid"
	InvoiceStatusUnpaid = "Unpaid"

	// DateLayout is how invoice dates are stored and serialized.
	DateLayout = "2006-01-02"
)

// Invoice always belongs to exactly one user.
type Invoice struct {
	ID            int64     `db:"id"`
	InvoiceNumber *string   `db:"invoice_number"`
	Vendor        string    `db:"vendor"`
	Date          time.Time `db:"date"`
	Amount        float64   `db:"amount"`
	Status        string    `db:"status"`
	Category      *string   `db:"category"`
	UserID        int64     `db:"user_id"`
}
