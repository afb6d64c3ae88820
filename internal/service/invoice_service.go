package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/models"
	"invoice-assistant/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const unknownVendor = "Unknown Vendor"

type InvoiceService struct {
	invoiceRepo *repository.InvoiceRepository
	extractor   Extractor
	tempDir     string
	timeout     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	extractor Extractor,
	tempDir string,
	timeout time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o700); err != nil {
		logger.Warn("Failed to create upload temp directory", zap.String("dir", tempDir), zap.Error(err))
	}

	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		extractor:   extractor,
		tempDir:     tempDir,
		timeout:     timeout,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *InvoiceService) List(ctx context.Context, userID int64) ([]dto.InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	result := make([]dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = toInvoiceResponse(inv)
	}
	return result, nil
}

// UpdateStatus returns repository.ErrNotFound when the invoice is not the caller's.
func (s *InvoiceService) UpdateStatus(ctx context.Context, userID, invoiceID int64, status string) (*dto.InvoiceResponse, error) {
	if err := s.invoiceRepo.UpdateStatus(ctx, userID, invoiceID, status); err != nil {
		return nil, err
	}

	inv, err := s.invoiceRepo.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice status updated", zap.Int64("invoice_id", invoiceID), zap.String("status", status))
	resp := toInvoiceResponse(inv)
	return &resp, nil
}

// Upload runs the extraction pipeline for one document and stores the result.
// Unsupported extensions fail before anything touches disk or the network, and
// the temp copy is removed on every path.
func (s *InvoiceService) Upload(ctx context.Context, userID int64, fileName string, file io.Reader) (*dto.UploadInvoiceResponse, error) {
	ext, err := ValidateExtension(fileName)
	if err != nil {
		return nil, err
	}

	tempPath, err := s.saveTemp(file, ext)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to remove temp file", zap.String("path", tempPath), zap.Error(err))
		}
	}()

	extractCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	extracted, err := s.extractor.Extract(extractCtx, tempPath)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	inv := s.invoiceFromExtraction(extracted, userID)
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("Invoice uploaded",
		zap.Int64("invoice_id", inv.ID),
		zap.Int64("user_id", userID),
		zap.String("vendor", inv.Vendor),
		zap.Float64("amount", inv.Amount),
	)

	return &dto.UploadInvoiceResponse{
		Message:   "Invoice uploaded and processed successfully",
		InvoiceID: inv.ID,
		ExtractedData: dto.ExtractedDataSummary{
			InvoiceNumber: extracted.InvoiceNumber,
			Vendor:        extracted.VendorName,
			Customer:      extracted.CustomerName,
			Date:          extracted.Date,
			Total:         extracted.TotalGrossWorth,
			ItemsCount:    len(extracted.Items),
		},
	}, nil
}

func (s *InvoiceService) saveTemp(file io.Reader, ext string) (string, error) {
	tempPath := filepath.Join(s.tempDir, "invoice-"+uuid.New().String()+ext)

	dst, err := os.OpenFile(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	_, copyErr := io.Copy(dst, file)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return tempPath, nil
}

func (s *InvoiceService) invoiceFromExtraction(extracted *dto.ExtractedInvoice, userID int64) *models.Invoice {
	vendorName := strings.TrimSpace(sanitizeUTF8(deref(extracted.VendorName)))

	vendor := vendorName
	if vendor == "" {
		vendor = unknownVendor
	}

	category, ok := canonicalCategory(sanitizeUTF8(deref(extracted.Category)))
	if !ok {
		if extracted.Category != nil && *extracted.Category != "" {
			s.logger.Warn("Extracted category is not a known label, classifying by vendor",
				zap.String("category", *extracted.Category))
		}
		category = Classify(vendorName)
	}

	rawDate := deref(extracted.Date)
	date, ok := ParseInvoiceDate(rawDate)
	if !ok {
		s.logger.Warn("Unrecognized invoice date, using today", zap.String("date", rawDate))
		date = NormalizeDate(rawDate, s.now())
	}

	var amount float64
	if extracted.TotalGrossWorth != nil {
		amount = *extracted.TotalGrossWorth
	}
	if amount < 0 {
		s.logger.Warn("Negative extracted total, storing 0", zap.Float64("total", amount))
		amount = 0
	}

	var invoiceNumber *string
	if n := strings.TrimSpace(sanitizeUTF8(deref(extracted.InvoiceNumber))); n != "" {
		invoiceNumber = &n
	}

	return &models.Invoice{
		InvoiceNumber: invoiceNumber,
		Vendor:        vendor,
		Date:          date,
		Amount:        amount,
		Status:        models.InvoiceStatusUnpaid,
		Category:      &category,
		UserID:        userID,
	}
}

func toInvoiceResponse(inv *models.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Vendor:        inv.Vendor,
		Date:          inv.Date.Format(models.DateLayout),
		Amount:        inv.Amount,
		Status:        inv.Status,
		Category:      inv.Category,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
