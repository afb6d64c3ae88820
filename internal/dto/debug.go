package dto

import "invoice-assistant/pkg/database"

type SchemaResponse struct {
	Schema        []database.Column `json:"schema"`
	SchemaVersion int               `json:"schema_version"`
	TotalInvoices int               `json:"total_invoices"`
}

// DebugUser never carries hash material, only the scheme it is stored in.
type DebugUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	HashScheme string `json:"hash_scheme"`
}

type UsersResponse struct {
	Users []DebugUser `json:"users"`
	Count int         `json:"count"`
}
