package handlers

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/presenters"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/pkg/matching"
	"Food-Rescue-Coordinator/pkg/pickup"

	"github.com/gofiber/fiber/v2"
)

type (
	MatchingHandler interface {
		MatchDonation(c *fiber.Ctx) error
		MatchPending(c *fiber.Ctx) error
	}

	matchingHandler struct {
		matchingService matching.MatchingService
	}
)

func NewMatchingHandler(matchingService matching.MatchingService) MatchingHandler {
	return &matchingHandler{matchingService: matchingService}
}

func (h *matchingHandler) MatchDonation(c *fiber.Ctx) error {
	p, err := h.matchingService.Match(c.UserContext(), middleware.Principal(c), c.Params("id"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedMatchDonation, err)
	}
	return presenters.SuccessResponse(c, pickup.ToResponse(p), fiber.StatusCreated, domain.MessageSuccessMatchDonation)
}

func (h *matchingHandler) MatchPending(c *fiber.Ctx) error {
	summary, err := h.matchingService.MatchPending(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedMatchPending, err)
	}
	return presenters.SuccessResponse(c, summary, fiber.StatusOK, domain.MessageSuccessMatchPending)
}
