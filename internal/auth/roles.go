package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireServiceDesk ensures the caller is a service-desk employee.
func RequireServiceDesk() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.IsServiceDesk() {
			return fiber.NewError(http.StatusForbidden, "service-desk capability required")
		}
		return c.Next()
	}
}

// RequireEmployee ensures the caller is authenticated.
func RequireEmployee() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
