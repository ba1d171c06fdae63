package handlers

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/presenters"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/pkg/pickup"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	PickupHandler interface {
		GetPickupByID(c *fiber.Ctx) error
		GetMyPickups(c *fiber.Ctx) error
		ConfirmPickup(c *fiber.Ctx) error
		ConfirmDelivery(c *fiber.Ctx) error
		CancelAssignment(c *fiber.Ctx) error
		UploadProof(c *fiber.Ctx) error
	}

	pickupHandler struct {
		pickupService pickup.PickupService
		validator     *validator.Validate
	}
)

func NewPickupHandler(pickupService pickup.PickupService, validator *validator.Validate) PickupHandler {
	return &pickupHandler{
		pickupService: pickupService,
		validator:     validator,
	}
}

func (h *pickupHandler) GetPickupByID(c *fiber.Ctx) error {
	p, err := h.pickupService.GetPickup(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetPickup, err)
	}
	return presenters.SuccessResponse(c, pickup.ToResponse(p), fiber.StatusOK, domain.MessageSuccessGetPickup)
}

func (h *pickupHandler) GetMyPickups(c *fiber.Ctx) error {
	list, err := h.pickupService.ListMyPickups(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetPickup, err)
	}

	res := make([]*domain.Pickup, 0, len(list))
	for _, p := range list {
		res = append(res, pickup.ToResponse(p))
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPickup)
}

func (h *pickupHandler) ConfirmPickup(c *fiber.Ctx) error {
	req := new(domain.ConfirmPickupRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmPickup, err)
	}

	p, err := h.pickupService.ConfirmPickup(c.UserContext(), middleware.Principal(c), c.Params("id"), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedConfirmPickup, err)
	}
	return presenters.SuccessResponse(c, pickup.ToResponse(p), fiber.StatusOK, domain.MessageSuccessConfirmPickup)
}

func (h *pickupHandler) ConfirmDelivery(c *fiber.Ctx) error {
	req := new(domain.ConfirmDeliveryRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmDelivery, err)
	}

	p, err := h.pickupService.ConfirmDelivery(c.UserContext(), middleware.Principal(c), c.Params("id"), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedConfirmDelivery, err)
	}
	return presenters.SuccessResponse(c, pickup.ToResponse(p), fiber.StatusOK, domain.MessageSuccessConfirmDelivery)
}

func (h *pickupHandler) CancelAssignment(c *fiber.Ctx) error {
	p, err := h.pickupService.CancelAssignment(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedCancelAssignment, err)
	}
	return presenters.SuccessResponse(c, pickup.ToResponse(p), fiber.StatusOK, domain.MessageSuccessCancelAssignment)
}

func (h *pickupHandler) UploadProof(c *fiber.Ctx) error {
	req := &domain.UploadProofRequest{
		PickupID: c.Params("id"),
		Kind:     c.FormValue("kind"),
	}
	req.Image, _ = c.FormFile("image")

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadProof, err)
	}

	res, err := h.pickupService.UploadProof(c.UserContext(), middleware.Principal(c), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedUploadProof, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessUploadProof)
}
