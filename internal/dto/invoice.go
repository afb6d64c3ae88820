package dto

type InvoiceResponse struct {
	ID            int64   `json:"id"`
	InvoiceNumber *string `json:"invoice_number"`
	Vendor        string  `json:"vendor"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Category      *string `json:"category"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Paid Unpaid"`
}

type UploadInvoiceResponse struct {
	Message       string               `json:"message"`
	InvoiceID     int64                `json:"invoice_id"`
	ExtractedData ExtractedDataSummary `json:"extracted_data"`
}

type ExtractedDataSummary struct {
	InvoiceNumber *string  `json:"invoice_number"`
	Vendor        *string  `json:"vendor"`
	Customer      *string  `json:"customer"`
	Date          *string  `json:"date"`
	Total         *float64 `json:"total"`
	ItemsCount    int      `json:"items_count"`
}
