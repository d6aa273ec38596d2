package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/masykurm/talent-scout/internal/model"
)

// UserFinder resolves an API token to its user.
type UserFinder interface {
	FindByToken(token string) (*model.User, error)
}

const userLocalKey = "currentUser"

// Auth validates the bearer token and stores the user in the request locals.
func Auth(users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "missing bearer token",
			})
		}
		user, err := users.FindByToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid token",
			})
		}
		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Auth.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userLocalKey).(*model.User)
	return user
}
