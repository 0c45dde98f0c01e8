package middleware

import (
	"strings"

	"digitizing/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware that checks for a valid customer
// JWT token and stores the subject id in the request context.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return unauthorized(c, "Invalid or expired token")
		}
		c.Locals("user_id", userID)

		return c.Next()
	}
}

// AdminRequired is a Fiber middleware that checks for a valid admin JWT
// token and stores the admin id and role in the request context.
func AdminRequired(adminService *services.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := adminService.ValidateToken(tokenString)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		adminID, _ := claims["admin_id"].(string)
		role, _ := claims["role"].(string)
		if adminID == "" {
			return unauthorized(c, "Invalid or expired token")
		}
		c.Locals("admin_id", adminID)
		c.Locals("admin_role", role)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
