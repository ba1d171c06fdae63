package presenters

import (
	"Food-Rescue-Coordinator/domain"
	"context"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrForbidden, fiber.StatusForbidden},
		{fmt.Errorf("%w: picked_up -> pending", domain.ErrInvalidTransition), fiber.StatusConflict},
		{domain.ErrNoCandidate, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: donation", domain.ErrNotFound), fiber.StatusNotFound},
		{domain.ErrConflict, fiber.StatusConflict},
		{fmt.Errorf("%w: %v", domain.ErrUnavailable, context.DeadlineExceeded), fiber.StatusServiceUnavailable},
		{domain.ErrInvalidRequest, fiber.StatusBadRequest},
		{fmt.Errorf("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}
