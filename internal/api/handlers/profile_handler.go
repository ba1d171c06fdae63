package handlers

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/presenters"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/pkg/profile"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ProfileHandler interface {
		CreateOrganization(c *fiber.Ctx) error
		UpdateOrganization(c *fiber.Ctx) error
		GetOrganization(c *fiber.Ctx) error
		VerifyOrganization(c *fiber.Ctx) error

		CreateCharity(c *fiber.Ctx) error
		UpdateCharity(c *fiber.Ctx) error
		GetCharity(c *fiber.Ctx) error
		VerifyCharity(c *fiber.Ctx) error

		CreateVolunteer(c *fiber.Ctx) error
		UpdateVolunteerLocation(c *fiber.Ctx) error
		GetVolunteer(c *fiber.Ctx) error
	}

	profileHandler struct {
		profileService profile.ProfileService
		validator      *validator.Validate
	}
)

func NewProfileHandler(profileService profile.ProfileService, validator *validator.Validate) ProfileHandler {
	return &profileHandler{
		profileService: profileService,
		validator:      validator,
	}
}

func (h *profileHandler) CreateOrganization(c *fiber.Ctx) error {
	req := new(domain.OrganizationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateProfile, err)
	}

	org, err := h.profileService.CreateOrganization(c.UserContext(), middleware.Principal(c), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedCreateProfile, err)
	}
	return presenters.SuccessResponse(c, org, fiber.StatusCreated, domain.MessageSuccessCreateProfile)
}

func (h *profileHandler) UpdateOrganization(c *fiber.Ctx) error {
	req := new(domain.OrganizationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateProfile, err)
	}

	org, err := h.profileService.UpdateOrganization(c.UserContext(), middleware.Principal(c), c.Params("id"), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedUpdateProfile, err)
	}
	return presenters.SuccessResponse(c, org, fiber.StatusOK, domain.MessageSuccessUpdateProfile)
}

func (h *profileHandler) GetOrganization(c *fiber.Ctx) error {
	org, err := h.profileService.GetOrganization(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetProfile, err)
	}
	return presenters.SuccessResponse(c, org, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *profileHandler) VerifyOrganization(c *fiber.Ctx) error {
	req := new(domain.VerifyRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	org, err := h.profileService.SetOrganizationVerified(c.UserContext(), middleware.Principal(c), c.Params("id"), req.Verified)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedVerify, err)
	}
	return presenters.SuccessResponse(c, org, fiber.StatusOK, domain.MessageSuccessVerify)
}

func (h *profileHandler) CreateCharity(c *fiber.Ctx) error {
	req := new(domain.OrganizationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateProfile, err)
	}

	charity, err := h.profileService.CreateCharity(c.UserContext(), middleware.Principal(c), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedCreateProfile, err)
	}
	return presenters.SuccessResponse(c, charity, fiber.StatusCreated, domain.MessageSuccessCreateProfile)
}

func (h *profileHandler) UpdateCharity(c *fiber.Ctx) error {
	req := new(domain.OrganizationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateProfile, err)
	}

	charity, err := h.profileService.UpdateCharity(c.UserContext(), middleware.Principal(c), c.Params("id"), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedUpdateProfile, err)
	}
	return presenters.SuccessResponse(c, charity, fiber.StatusOK, domain.MessageSuccessUpdateProfile)
}

func (h *profileHandler) GetCharity(c *fiber.Ctx) error {
	charity, err := h.profileService.GetCharity(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetProfile, err)
	}
	return presenters.SuccessResponse(c, charity, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *profileHandler) VerifyCharity(c *fiber.Ctx) error {
	req := new(domain.VerifyRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	charity, err := h.profileService.SetCharityVerified(c.UserContext(), middleware.Principal(c), c.Params("id"), req.Verified)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedVerify, err)
	}
	return presenters.SuccessResponse(c, charity, fiber.StatusOK, domain.MessageSuccessVerify)
}

func (h *profileHandler) CreateVolunteer(c *fiber.Ctx) error {
	req := new(domain.VolunteerRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	volunteer, err := h.profileService.CreateVolunteer(c.UserContext(), middleware.Principal(c), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedCreateProfile, err)
	}
	return presenters.SuccessResponse(c, volunteer, fiber.StatusCreated, domain.MessageSuccessCreateProfile)
}

func (h *profileHandler) UpdateVolunteerLocation(c *fiber.Ctx) error {
	req := new(domain.VolunteerRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	volunteer, err := h.profileService.UpdateVolunteerLocation(c.UserContext(), middleware.Principal(c), c.Params("id"), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedUpdateProfile, err)
	}
	return presenters.SuccessResponse(c, volunteer, fiber.StatusOK, domain.MessageSuccessUpdateProfile)
}

func (h *profileHandler) GetVolunteer(c *fiber.Ctx) error {
	volunteer, err := h.profileService.GetVolunteer(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetProfile, err)
	}
	return presenters.SuccessResponse(c, volunteer, fiber.StatusOK, domain.MessageSuccessGetProfile)
}
