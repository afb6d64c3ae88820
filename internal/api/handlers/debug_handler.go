package handlers

import (
	"invoice-assistant/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DebugHandler struct {
	adminService *service.AdminService
	logger       *zap.Logger
}

func NewDebugHandler(adminService *service.AdminService, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// DBSchema godoc
// @Summary Inspect the invoices table
// @Tags debug
// @Produce json
// @Param X-Admin-Secret header string true "Admin secret"
// @Success 200 {object} dto.SchemaResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /debug/db-schema [get]
func (h *DebugHandler) DBSchema(c *fiber.Ctx) error {
	resp, err := h.adminService.Schema(c.Context())
	if err != nil {
		h.logger.Error("Failed to read schema", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(resp)
}

// Users godoc
// @Summary List users
// @Description Lists accounts with the scheme of their password hash.
// @Tags debug
// @Produce json
// @Param X-Admin-Secret header string true "Admin secret"
// @Success 200 {object} dto.UsersResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /debug/users [get]
func (h *DebugHandler) Users(c *fiber.Ctx) error {
	resp, err := h.adminService.Users(c.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(resp)
}
