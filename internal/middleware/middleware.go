package middleware

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/presenters"
	"Food-Rescue-Coordinator/pkg/jwt"
	"Food-Rescue-Coordinator/pkg/user"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const principalKey = "principal"

type (
	Middleware interface {
		AuthMiddleware(jwtService jwt.JWTService) fiber.Handler
		CORSMiddleware() fiber.Handler
		TimeoutMiddleware(timeout time.Duration) fiber.Handler
		AdminOnly() fiber.Handler
	}

	middleware struct {
		userService user.UserService
	}
)

func NewMiddleware(userService user.UserService) Middleware {
	return &middleware{userService: userService}
}

// AuthMiddleware validates the bearer token and resolves its principal once
// per request. The role always comes from storage, never from the token.
func (m *middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrTokenInvalid)
		}

		userID, _, err := jwtService.GetUserIDByToken(token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}

		principal, err := m.userService.ResolvePrincipal(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
				return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MesaageUserNotAllowed, err)
			}
			return presenters.Failure(c, domain.MessageFailedProcessRequest, err)
		}

		c.Locals(principalKey, principal)
		c.Locals("user_id", principal.UserID)
		c.Locals("role", principal.Role)
		return c.Next()
	}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	})
}

// TimeoutMiddleware bounds the context handed to the services.
func (m *middleware) TimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (m *middleware) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Principal(c).IsAdmin() {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, domain.ErrForbidden)
		}
		return c.Next()
	}
}

// Principal returns the caller resolved by AuthMiddleware, or the zero
// principal which every policy check denies.
func Principal(c *fiber.Ctx) domain.Principal {
	if p, ok := c.Locals(principalKey).(domain.Principal); ok {
		return p
	}
	return domain.Principal{}
}
