package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/insightdesk/backend/internal/middleware"
	"github.com/insightdesk/backend/internal/services"
	"github.com/insightdesk/backend/pkg/utils"
)

type AuthHandler struct {
	OTP *services.OTPService
}

func NewAuthHandler(otp *services.OTPService) *AuthHandler {
	return &AuthHandler{OTP: otp}
}

type requestOTPRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req requestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.OTP.RequestCode(req.Email); err != nil {
		return serviceError(c, err, "failed to send OTP")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "OTP sent to your email",
	})
}

type loginRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.OTP == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email and otp are required")
	}

	admin, err := h.OTP.Verify(req.Email, req.OTP)
	if err != nil {
		return serviceError(c, err, "failed to verify OTP")
	}

	token, err := utils.GenerateToken(admin)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"admin": admin,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session := middleware.GetSession(c)
	if session == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":    session.AdminID,
		"email": session.Email,
		"name":  session.Name,
	})
}
