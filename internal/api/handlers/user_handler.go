package handlers

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/presenters"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		Me(c *fiber.Ctx) error
		CreateUser(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
	}
}

func (h *userHandler) Me(c *fiber.Ctx) error {
	u, err := h.userService.ResolveRole(c.UserContext(), middleware.Principal(c).UserID)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetUser, err)
	}
	return presenters.SuccessResponse(c, u, fiber.StatusOK, domain.MessageSuccessGetUser)
}

// CreateUser registers a user record for a principal already known to the
// identity provider. Admin only.
func (h *userHandler) CreateUser(c *fiber.Ctx) error {
	req := new(domain.CreateUserRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateUser, err)
	}

	u, err := h.userService.CreateUser(c.UserContext(), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedCreateUser, err)
	}
	return presenters.SuccessResponse(c, u, fiber.StatusCreated, domain.MessageSuccessCreateUser)
}
