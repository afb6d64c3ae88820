package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"invoice-assistant/internal/dto"
	"invoice-assistant/pkg/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const geminiDeleteTimeout = 10 * time.Second

// GeminiExtractor uploads the document to the Gemini Files API and asks for
// JSON constrained by invoiceResponseSchema.
type GeminiExtractor struct {
	client        *genai.Client
	model         string
	deleteTimeout time.Duration
	logger        *zap.Logger
}

func NewGeminiExtractor(ctx context.Context, cfg *config.ExtractorConfig, logger *zap.Logger) (*GeminiExtractor, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, errors.New("GOOGLE_API_KEY is not set")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info("Using Gemini extractor", zap.String("model", cfg.GeminiModel))
	return &GeminiExtractor{
		client:        client,
		model:         cfg.GeminiModel,
		deleteTimeout: geminiDeleteTimeout,
		logger:        logger,
	}, nil
}

func (e *GeminiExtractor) Extract(ctx context.Context, filePath string) (*dto.ExtractedInvoice, error) {
	ext, err := ValidateExtension(filePath)
	if err != nil {
		return nil, err
	}

	file, err := e.client.Files.UploadFromPath(ctx, filePath, &genai.UploadFileConfig{
		MIMEType:    mimeTypeFor(ext),
		DisplayName: filepath.Base(filePath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to Gemini: %w", err)
	}
	defer func() {
		// Best effort; the Files API expires uploads on its own.
		deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.deleteTimeout)
		defer cancel()
		if _, err := e.client.Files.Delete(deleteCtx, file.Name, nil); err != nil {
			e.logger.Warn("Failed to delete uploaded file", zap.String("name", file.Name), zap.Error(err))
		}
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(extractionPrompt(ext)),
		genai.NewPartFromURI(file.URI, file.MIMEType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   invoiceResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini generate content failed: %w", err)
	}

	raw := resp.Text()
	e.logger.Debug("Gemini extraction response", zap.String("file", filepath.Base(filePath)), zap.Int("length", len(raw)))

	return DecodeExtractedInvoice(raw)
}

func invoiceResponseSchema() *genai.Schema {
	str := func(description string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: description}
	}
	num := func(description string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: description}
	}

	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: "Comprehensive invoice data including account information",
		Properties: map[string]*genai.Schema{
			"invoice_number": str("The invoice number e.g. 1234567890"),
			"account_number": str("The customer account number or account ID"),
			"date":           str("The date of the invoice e.g. 2024-01-01"),
			"due_date":       str("The due date of the invoice"),
			"vendor_name":    str("The vendor/company name"),
			"customer_name":  str("The customer/client name"),
			"items": {
				Type:        genai.TypeArray,
				Description: "The list of items with description, quantity and gross worth",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"description": str("The description of the item"),
						"quantity":    num("The quantity of the item"),
						"unit_price":  num("The unit price of the item"),
						"gross_worth": num("The gross worth/total price of the item"),
					},
					Required: []string{"description", "quantity"},
				},
			},
			"subtotal":          num("The subtotal before taxes"),
			"tax_amount":        num("The tax amount"),
			"total_gross_worth": num("The total gross worth of the invoice"),
			"category": {
				Type:        genai.TypeString,
				Description: "The category of the invoice based on vendor name and invoice content",
				Enum:        Categories(),
			},
		},
	}
}
