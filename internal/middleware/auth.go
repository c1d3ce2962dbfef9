package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/insightdesk/backend/pkg/logger"
	"github.com/insightdesk/backend/pkg/utils"
)

const sessionKey = "session"

func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "http://localhost:3001,http://127.0.0.1:3001",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

// RequireAuth validates the bearer token and stores its claims for the
// handler. The token is the whole session: signature, expiry, and identity
// claims are checked, but there is no server-side lookup or revocation.
func RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.Warn("session_missing_header", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		logger.Warn("session_invalid_format", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("session_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired token")
	}

	c.Locals(sessionKey, claims)
	c.Locals("adminID", claims.AdminID.String())
	return c.Next()
}

// SuperAdminOnly restricts dashboard catalog mutations to the one configured
// super-admin address.
func SuperAdminOnly(superAdminEmail string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := GetSession(c)
		if session == nil {
			return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
		}
		if superAdminEmail == "" || session.Email != strings.ToLower(superAdminEmail) {
			return utils.Error(c, fiber.StatusForbidden, "super admin access required")
		}
		return c.Next()
	}
}

func GetSession(c *fiber.Ctx) *utils.Claims {
	value := c.Locals(sessionKey)
	if value == nil {
		return nil
	}
	claims, ok := value.(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}
