package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/donpedro/internal/config"
	"github.com/example/donpedro/internal/models"
	"github.com/example/donpedro/internal/utils"
)

const principalContextKey = "currentPrincipal"

// Principal identifies the authenticated staff or admin account for the
// lifetime of one request.
type Principal struct {
	Username string
	Role     string
}

// AuthMiddleware validates bearer tokens and loads the authenticated
// principal into context. The username is re-checked against storage on
// every request, so deleting an account revokes its outstanding tokens.
func AuthMiddleware(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		username, role, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		var principal models.AccessPrincipal
		if err := db.Where("username = ?", username).First(&principal).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
			}
			return err
		}

		c.Locals(principalContextKey, Principal{Username: username, Role: role})
		return c.Next()
	}
}

// RequireRole rejects requests whose principal holds none of the given roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetCurrentPrincipal(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusForbidden, "insufficient privileges")
	}
}

// GetCurrentPrincipal extracts the authenticated principal from context.
func GetCurrentPrincipal(c *fiber.Ctx) (Principal, bool) {
	value := c.Locals(principalContextKey)
	if value == nil {
		return Principal{}, false
	}

	if principal, ok := value.(Principal); ok {
		return principal, true
	}

	return Principal{}, false
}
