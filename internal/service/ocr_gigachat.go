package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"invoice-assistant/internal/dto"
	"invoice-assistant/pkg/config"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

const gigaChatExtractionFormat = `Return ONLY a JSON object, without markdown or comments, with these fields (use null when a value is absent):
{
  "invoice_number": string,
  "account_number": string,
  "date": string,
  "due_date": string,
  "vendor_name": string,
  "customer_name": string,
  "items": [{"description": string, "quantity": number, "unit_price": number, "gross_worth": number}],
  "subtotal": number,
  "tax_amount": number,
  "total_gross_worth": number,
  "category": string
}
Every item must have a description and a quantity.`

// GigaChatExtractor sends images to GigaChat vision as file attachments. PDFs
// are converted to text locally with go-fitz and sent inline.
type GigaChatExtractor struct {
	cfg        *config.GigaChatConfig
	httpClient *http.Client
	oauthURL   string
	baseURL    string
	logger     *zap.Logger
}

func NewGigaChatExtractor(cfg *config.GigaChatConfig, logger *zap.Logger) *GigaChatExtractor {
	logger.Info("Using GigaChat extractor", zap.String("model", cfg.Model))
	oauthURL, baseURL := gigaChatEndpoints(cfg)
	return &GigaChatExtractor{
		cfg:        cfg,
		httpClient: newGigaChatHTTPClient(cfg, logger),
		oauthURL:   oauthURL,
		baseURL:    baseURL,
		logger:     logger,
	}
}

func (e *GigaChatExtractor) Extract(ctx context.Context, filePath string) (*dto.ExtractedInvoice, error) {
	ext, err := ValidateExtension(filePath)
	if err != nil {
		return nil, err
	}

	accessToken, err := getGigaChatAccessToken(ctx, e.oauthURL, e.cfg, e.httpClient, e.logger)
	if err != nil {
		return nil, err
	}

	prompt := extractionPrompt(ext) + "\n\n" + gigaChatExtractionFormat

	var content string
	if ext == ".pdf" {
		text, err := e.extractTextFromPDF(filePath)
		if err != nil {
			return nil, err
		}
		content, err = e.complete(ctx, accessToken, prompt+"\n\nDocument text:\n"+text, nil)
		if err != nil {
			return nil, err
		}
	} else {
		fileID, err := e.uploadFile(ctx, accessToken, filePath, ext)
		if err != nil {
			return nil, err
		}
		content, err = e.complete(ctx, accessToken, prompt, []string{fileID})
		if err != nil {
			return nil, err
		}
	}

	return DecodeExtractedInvoice(content)
}

func (e *GigaChatExtractor) extractTextFromPDF(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		textBuilder.WriteString(sanitizeUTF8(pageText))
		textBuilder.WriteString("\n")
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", errors.New("no text found in PDF")
	}

	e.logger.Info("PDF text extracted using go-fitz", zap.Int("pages", doc.NumPage()), zap.Int("text_length", len(text)))
	return text, nil
}

// uploadFile stores the document with purpose "general" so chat requests can attach it.
func (e *GigaChatExtractor) uploadFile(ctx context.Context, accessToken, filePath, ext string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("purpose", "general"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {mimeTypeFor(ext)},
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(filePath))},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var uploadResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploadResp.ID == "" {
		return "", errors.New("upload response has no file id")
	}

	e.logger.Info("File uploaded to GigaChat", zap.String("file_id", uploadResp.ID))
	return uploadResp.ID, nil
}

type gigaChatMessage struct {
	Role        string   `json:"role"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

type gigaChatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []gigaChatMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	Stream      bool              `json:"stream"`
}

func (e *GigaChatExtractor) complete(ctx context.Context, accessToken, prompt string, attachments []string) (string, error) {
	jsonData, err := json.Marshal(gigaChatCompletionRequest{
		Model: e.cfg.Model,
		Messages: []gigaChatMessage{
			{Role: "user", Content: prompt, Attachments: attachments},
		},
		Temperature: chatTemperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("extraction request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("no response from GigaChat")
	}

	return chatResp.Choices[0].Message.Content, nil
}
