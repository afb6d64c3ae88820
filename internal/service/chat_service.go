package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/models"
	"invoice-assistant/internal/repository"

	"go.uber.org/zap"
)

const (
	chatTemperature = 0.2

	chatErrorPrefix = "Error contacting chat service: "
	noInvoicesRow   = "No invoices found"
)

const chatSystemPrompt = `You are an expert assistant for an invoice and expense processing system.
- If the user's question is ambiguous, politely ask for clarification.
- Never mix general definitions with specific data unless the user's question clearly requests both.

Examples:
User: How many invoices do I have?
Assistant: [Use the provided data to answer, e.g., 'You have 3 invoices in the system.']

User: What is the total amount due?
Assistant: [Sum the amounts of all unpaid invoices from the provided data.]
- When the user asks for a list or details of invoices, ALWAYS respond ONLY with a Markdown table, with columns: ID, Invoice #, Vendor, Date, Amount, Status, Category.
- Do NOT add any text before or after the table unless the user specifically asks for it.
- The Amount column should always be formatted as currency (e.g., $1200.50).
- If there are no invoices, return a table with only the header row and a single row saying '` + noInvoicesRow + `'.
- For all other questions, answer normally.

Example:
| ID | Invoice # | Vendor    | Date       | Amount    | Status  | Category        |
|----|-----------|-----------|------------|-----------|---------|-----------------|
| 1  | INV-001   | Acme Corp | 2024-05-01 | $1200.50  | Unpaid  | Office Supplies |
| 2  | INV-002   | Gamma Inc | 2024-03-20 | $450.75   | Unpaid  | Technology      |
`

// CompletionRequest is one non-streaming chat completion. System is sent
// ahead of Messages as the system turn.
type CompletionRequest struct {
	System    string
	Messages  []dto.ChatMessage
	MaxTokens int
}

// ChatCompleter is a hosted chat-completion backend.
type ChatCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type ChatService struct {
	invoiceRepo *repository.InvoiceRepository
	completer   ChatCompleter
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

func NewChatService(invoiceRepo *repository.InvoiceRepository, completer ChatCompleter, maxTokens int, timeout time.Duration, logger *zap.Logger) *ChatService {
	return &ChatService{
		invoiceRepo: invoiceRepo,
		completer:   completer,
		maxTokens:   maxTokens,
		timeout:     timeout,
		logger:      logger,
	}
}

type invoiceContext struct {
	ID            int64   `json:"id"`
	InvoiceNumber *string `json:"invoice_number"`
	Vendor        string  `json:"vendor"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Category      *string `json:"category"`
}

// Respond answers the conversation using only the user's own invoices as context.
// Failures are returned as the answer text so the client shows them in the chat.
func (s *ChatService) Respond(ctx context.Context, history []dto.ChatMessage, user *models.User) string {
	invoices, err := s.invoiceRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load invoices for chat", zap.Int64("user_id", user.ID), zap.Error(err))
		return chatErrorPrefix + err.Error()
	}

	system, err := buildChatSystemPrompt(user, invoices)
	if err != nil {
		return chatErrorPrefix + err.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.completer.Complete(ctx, CompletionRequest{
		System:    system,
		Messages:  history,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		s.logger.Warn("Chat completion failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return chatErrorPrefix + err.Error()
	}

	s.logger.Info("Chat completion done",
		zap.Int64("user_id", user.ID),
		zap.Int("invoices", len(invoices)),
		zap.Int("turns", len(history)),
	)
	return strings.TrimSpace(answer)
}

func buildChatSystemPrompt(user *models.User, invoices []*models.Invoice) (string, error) {
	data := make([]invoiceContext, 0, len(invoices))
	for _, inv := range invoices {
		data = append(data, invoiceContext{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Vendor:        inv.Vendor,
			Date:          inv.Date.Format(models.DateLayout),
			Amount:        inv.Amount,
			Status:        inv.Status,
			Category:      inv.Category,
		})
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode invoice data: %w", err)
	}

	return fmt.Sprintf("%s\nUser name: %s\nInvoice data: %s", chatSystemPrompt, user.Name, encoded), nil
}
