package handlers

import (
	"errors"

	"invoice-assistant/internal/dto"
	"invoice-assistant/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Login user
// @Description Exchange username and password for a 60 minute bearer token. Accepts a form or JSON body.
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusBadRequest, "Incorrect username or password")
		}
		h.logger.Error("Login failed", zap.String("username", req.Username), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Login failed")
	}

	h.logger.Info("User logged in", zap.String("username", req.Username))
	return c.JSON(resp)
}

// ResetPassword godoc
// @Summary Reset a user's password
// @Description Admin only. Replaces the stored hash with a bcrypt hash of new_password.
// @Tags debug
// @Accept json
// @Produce json
// @Param X-Admin-Secret header string true "Admin secret"
// @Param request body dto.ResetPasswordRequest true "Reset request"
// @Success 200 {object} dto.ResetPasswordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /debug/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.ResetPassword(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("Password reset failed", zap.String("username", req.Username), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Password reset failed")
	}

	return c.JSON(resp)
}
