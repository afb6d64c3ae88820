package dto

// ExtractedInvoice mirrors the response schema sent to the extraction service.
// Every field is optional except the description and quantity of each item.
type ExtractedInvoice struct {
	InvoiceNumber   *string         `json:"invoice_number"`
	AccountNumber   *string         `json:"account_number"`
	Date            *string         `json:"date"`
	DueDate         *string         `json:"due_date"`
	VendorName      *string         `json:"vendor_name"`
	CustomerName    *string         `json:"customer_name"`
	Items           []ExtractedItem `json:"items" validate:"dive"`
	Subtotal        *float64        `json:"subtotal"`
	TaxAmount       *float64        `json:"tax_amount"`
	TotalGrossWorth *float64        `json:"total_gross_worth"`
	Category        *string         `json:"category"`
}

type ExtractedItem struct {
	Description *string  `json:"description" validate:"required"`
	Quantity    *float64 `json:"quantity" validate:"required"`
	UnitPrice   *float64 `json:"unit_price"`
	GrossWorth  *float64 `json:"gross_worth"`
}
