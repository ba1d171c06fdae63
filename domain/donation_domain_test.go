package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTable(t *testing.T) {
	statuses := []string{
		DonationStatusPending,
		DonationStatusAssigned,
		DonationStatusPickedUp,
		DonationStatusDelivered,
		DonationStatusCancelled,
	}
	allowed := map[[2]string]bool{
		{DonationStatusPending, DonationStatusAssigned}:   true,
		{DonationStatusPending, DonationStatusCancelled}:  true,
		{DonationStatusAssigned, DonationStatusPickedUp}:  true,
		{DonationStatusAssigned, DonationStatusCancelled}: true,
		{DonationStatusAssigned, DonationStatusPending}:   true,
		{DonationStatusPickedUp, DonationStatusDelivered}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition("unknown", DonationStatusAssigned))
	assert.False(t, CanTransition(DonationStatusPending, "unknown"))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(DonationStatusDelivered))
	assert.True(t, IsTerminalStatus(DonationStatusCancelled))
	assert.False(t, IsTerminalStatus(DonationStatusPickedUp))
}
