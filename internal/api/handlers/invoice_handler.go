package handlers

import (
	"errors"

	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/repository"
	"invoice-assistant/internal/service"
	"invoice-assistant/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// ListInvoices godoc
// @Summary List invoices
// @Description Returns the caller's invoices only.
// @Tags invoices
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.InvoiceResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /invoices/ [get]
func (h *InvoiceHandler) ListInvoices(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	invoices, err := h.invoiceService.List(c.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.Int64("user_id", user.ID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list invoices")
	}

	return c.JSON(invoices)
}

// UpdateStatus godoc
// @Summary Update invoice status
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body dto.UpdateInvoiceStatusRequest true "New status"
// @Security Bearer
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	invoiceID, err := c.ParamsInt("id")
	if err != nil || invoiceID <= 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid invoice ID")
	}

	var req dto.UpdateInvoiceStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.invoiceService.UpdateStatus(c.Context(), user.ID, int64(invoiceID), req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Invoice not found")
		}
		h.logger.Error("Failed to update invoice status", zap.Int("invoice_id", invoiceID), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update invoice")
	}

	return c.JSON(resp)
}

// UploadInvoice godoc
// @Summary Upload an invoice document
// @Description Extracts invoice fields from a PDF or image and stores a new Unpaid invoice.
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice document (pdf, jpg, jpeg, png, webp)"
// @Security Bearer
// @Success 200 {object} dto.UploadInvoiceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /upload-invoice/ [post]
func (h *InvoiceHandler) UploadInvoice(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "File is required")
	}

	if _, err := service.ValidateExtension(file.Filename); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Failed to open file")
	}
	defer src.Close()

	resp, err := h.invoiceService.Upload(c.Context(), user.ID, file.Filename, src)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFileType) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error("Invoice upload failed",
			zap.Int64("user_id", user.ID),
			zap.String("file", file.Filename),
			zap.Error(err),
		)
		return errorJSON(c, fiber.StatusInternalServerError, "Error processing invoice: "+err.Error())
	}

	return c.JSON(resp)
}
