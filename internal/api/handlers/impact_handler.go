package handlers

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/presenters"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/pkg/impact"

	"github.com/gofiber/fiber/v2"
)

type (
	ImpactHandler interface {
		GetMetrics(c *fiber.Ctx) error
	}

	impactHandler struct {
		impactService impact.ImpactService
	}
)

func NewImpactHandler(impactService impact.ImpactService) ImpactHandler {
	return &impactHandler{impactService: impactService}
}

func (h *impactHandler) GetMetrics(c *fiber.Ctx) error {
	metrics, summary, err := h.impactService.GetMetrics(c.UserContext(), middleware.Principal(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return presenters.Failure(c, domain.MessageFailedGetImpactMetrics, err)
	}
	return presenters.SuccessResponse(c, fiber.Map{
		"metrics": metrics,
		"summary": summary,
	}, fiber.StatusOK, domain.MessageSuccessGetImpactMetrics)
}
