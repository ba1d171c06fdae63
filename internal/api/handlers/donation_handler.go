package handlers

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/presenters"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/pkg/donation"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const maxPendingListed = 500

type (
	DonationHandler interface {
		CreateDonation(c *fiber.Ctx) error
		CancelDonation(c *fiber.Ctx) error
		GetDonationByID(c *fiber.Ctx) error
		GetOrganizationDonations(c *fiber.Ctx) error
		GetPendingDonations(c *fiber.Ctx) error
	}

	donationHandler struct {
		donationService donation.DonationService
		validator       *validator.Validate
	}
)

func NewDonationHandler(donationService donation.DonationService, validator *validator.Validate) DonationHandler {
	return &donationHandler{
		donationService: donationService,
		validator:       validator,
	}
}

func (h *donationHandler) CreateDonation(c *fiber.Ctx) error {
	req := new(domain.CreateDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateDonation, err)
	}

	created, err := h.donationService.CreateDonation(c.UserContext(), middleware.Principal(c), *req)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedCreateDonation, err)
	}
	return presenters.SuccessResponse(c, donation.ToResponse(created), fiber.StatusCreated, domain.MessageSuccessCreateDonation)
}

func (h *donationHandler) CancelDonation(c *fiber.Ctx) error {
	cancelled, err := h.donationService.CancelDonation(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedCancelDonation, err)
	}
	return presenters.SuccessResponse(c, donation.ToResponse(cancelled), fiber.StatusOK, domain.MessageSuccessCancelDonation)
}

func (h *donationHandler) GetDonationByID(c *fiber.Ctx) error {
	found, err := h.donationService.GetDonation(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetDonations, err)
	}
	return presenters.SuccessResponse(c, donation.ToResponse(found), fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetOrganizationDonations(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	list, count, err := h.donationService.ListOrganizationDonations(c.UserContext(), middleware.Principal(c), c.Params("id"), page, limit)
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetDonations, err)
	}

	res := make([]*domain.Donation, 0, len(list))
	for _, d := range list {
		res = append(res, donation.ToResponse(d))
	}
	return presenters.SuccessResponse(c, fiber.Map{
		"donations": res,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

// GetPendingDonations drains the pending sequence up to limit rows.
func (h *donationHandler) GetPendingDonations(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit < 1 || limit > maxPendingListed {
		limit = 100
	}

	res := make([]*domain.Donation, 0)
	for d, err := range h.donationService.ListPending(c.UserContext(), time.Now()) {
		if err != nil {
			return presenters.Failure(c, domain.MessageFailedGetPendingDonation, err)
		}
		res = append(res, donation.ToResponse(d))
		if len(res) == limit {
			break
		}
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPendingDonation)
}
