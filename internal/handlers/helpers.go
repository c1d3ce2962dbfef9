package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/insightdesk/backend/internal/services"
	"github.com/insightdesk/backend/pkg/utils"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// serviceError maps the service error kinds onto HTTP responses. Fallback
// covers unexpected storage failures.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		return utils.Error(c, fiber.StatusBadRequest, validation.Reason)
	case errors.Is(err, services.ErrNotAuthorized):
		return utils.Error(c, fiber.StatusForbidden, "email not authorized")
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.Error(c, fiber.StatusUnauthorized, "invalid code")
	case errors.Is(err, services.ErrCodeExpired):
		return utils.Error(c, fiber.StatusUnauthorized, "code has expired, request a new one")
	case errors.Is(err, services.ErrNotFound):
		message := strings.TrimSuffix(err.Error(), ": not found") + " not found"
		return utils.Error(c, fiber.StatusNotFound, message)
	case errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, strings.TrimSuffix(err.Error(), ": conflict"))
	default:
		return utils.Error(c, fiber.StatusInternalServerError, fallback)
	}
}
