package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/models"
	"invoice-assistant/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCompleter struct {
	answer   string
	err      error
	requests []CompletionRequest
	deadline bool
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	return f.answer, f.err
}

func TestChatRespondEmbedsOnlyOwnInvoices(t *testing.T) {
	ctx := context.Background()
	stores := newTestStores(t)

	alice := &models.User{Username: "user1", PasswordHash: "x", Name: "Alice"}
	bob := &models.User{Username: "user2", PasswordHash: "x", Name: "Bob"}
	require.NoError(t, stores.users.Create(ctx, alice))
	require.NoError(t, stores.users.Create(ctx, bob))

	number := "INV-001"
	require.NoError(t, stores.invoices.Create(ctx, &models.Invoice{
		InvoiceNumber: &number, Vendor: "Acme Corp", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount: 1200.5, Status: models.InvoiceStatusUnpaid, UserID: alice.ID,
	}))
	require.NoError(t, stores.invoices.Create(ctx, &models.Invoice{
		Vendor: "Bob Secret Vendor", Date: time.Now(), Amount: 1, Status: models.InvoiceStatusPaid, UserID: bob.ID,
	}))

	completer := &fakeCompleter{answer: "  You have 1 invoice.  "}
	svc := NewChatService(stores.invoices, completer, 800, 30*time.Second, zaptest.NewLogger(t))

	history := []dto.ChatMessage{{Role: dto.RoleUser, Content: "How many invoices do I have?"}}
	answer := svc.Respond(ctx, history, alice)

	assert.Equal(t, "You have 1 invoice.", answer)
	require.Len(t, completer.requests, 1)
	req := completer.requests[0]

	assert.True(t, completer.deadline, "completion must run under a timeout")
	assert.Equal(t, 800, req.MaxTokens)
	assert.Equal(t, history, req.Messages)
	assert.Contains(t, req.System, "User name: Alice")
	assert.Contains(t, req.System, `"vendor":"Acme Corp"`)
	assert.Contains(t, req.System, `"date":"2024-05-01"`)
	assert.Contains(t, req.System, "ID, Invoice #, Vendor, Date, Amount, Status, Category")
	assert.NotContains(t, req.System, "Bob Secret Vendor")
}

func TestChatSystemPromptForEmptyInvoiceList(t *testing.T) {
	system, err := buildChatSystemPrompt(&models.User{Name: "Bob"}, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(system, "Invoice data: []"))
	assert.Contains(t, system, "a single row saying 'No invoices found'")
	assert.Contains(t, system, "Do NOT add any text before or after the table")
}

func TestChatRespondReturnsErrorAsAnswer(t *testing.T) {
	stores := newTestStores(t)
	completer := &fakeCompleter{err: errors.New("429 Too Many Requests: rate limited")}
	svc := NewChatService(stores.invoices, completer, 800, time.Second, zaptest.NewLogger(t))

	answer := svc.Respond(context.Background(), []dto.ChatMessage{{Role: dto.RoleUser, Content: "hi"}}, &models.User{ID: 1, Name: "Alice"})
	assert.Equal(t, "Error contacting chat service: 429 Too Many Requests: rate limited", answer)
}

func TestChatRespondStoreFailureIsAnswer(t *testing.T) {
	stores := newTestStores(t)
	completer := &fakeCompleter{answer: "unused"}
	svc := NewChatService(stores.invoices, completer, 800, time.Second, zaptest.NewLogger(t))
	stores.db.Close()

	answer := svc.Respond(context.Background(), nil, &models.User{ID: 1})
	assert.True(t, strings.HasPrefix(answer, chatErrorPrefix), answer)
	assert.Empty(t, completer.requests)
}

func TestGroqClientComplete(t *testing.T) {
	var got openAIChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" | ID | Invoice # |\n"}}]}`))
	}))
	defer server.Close()

	client := NewGroqClient(&config.ChatConfig{APIKey: "test-key", APIURL: server.URL, Model: "llama-3.3-70b-versatile"}, zaptest.NewLogger(t))
	answer, err := client.Complete(context.Background(), CompletionRequest{
		System:    "system prompt",
		Messages:  []dto.ChatMessage{{Role: dto.RoleUser, Content: "list my invoices"}},
		MaxTokens: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, "| ID | Invoice # |", answer)

	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.Equal(t, 800, got.MaxTokens)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openAIMessage{Role: "system", Content: "system prompt"}, got.Messages[0])
	assert.Equal(t, openAIMessage{Role: "user", Content: "list my invoices"}, got.Messages[1])
}

func TestGroqClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key"}}`))
	}))
	defer server.Close()

	client := NewGroqClient(&config.ChatConfig{APIURL: server.URL}, zaptest.NewLogger(t))
	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.EqualError(t, err, "401 Unauthorized: Invalid API Key")
}

func TestUpstreamErrorDetailFallsBackToBody(t *testing.T) {
	assert.Equal(t, "bad gateway", upstreamErrorDetail([]byte(" bad gateway\n")))
}
