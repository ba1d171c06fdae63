package domain

import (
	"errors"
	"time"
)

const (
	DonationStatusPending   = "pending"
	DonationStatusAssigned  = "assigned"
	DonationStatusPickedUp  = "picked_up"
	DonationStatusDelivered = "delivered"
	DonationStatusCancelled = "cancelled"

	FoodTypePreparedMeals = "prepared_meals"
	FoodTypeGroceries     = "groceries"
	FoodTypeProduce       = "produce"
	FoodTypeBakery        = "bakery"
	FoodTypeOther         = "other"
)

var (
	MessageSuccessCreateDonation     = "donation created successfully"
	MessageSuccessGetDonations       = "donations retrieved successfully"
	MessageSuccessCancelDonation     = "donation cancelled successfully"
	MessageSuccessGetPendingDonation = "pending donations retrieved successfully"

	MessageFailedCreateDonation     = "failed to create donation"
	MessageFailedGetDonations       = "failed to retrieve donations"
	MessageFailedCancelDonation     = "failed to cancel donation"
	MessageFailedGetPendingDonation = "failed to retrieve pending donations"

	ErrDonationNotFound      = errors.New("donation not found")
	ErrDonationExpired       = errors.New("donation expired")
	ErrInvalidPickupWindow   = errors.New("pickup window end must be after start")
	ErrInvalidDonationStatus = errors.New("invalid donation status")
)

// donationTransitions lists the only legal edges of the donation state machine.
var donationTransitions = map[string][]string{
	DonationStatusPending:  {DonationStatusAssigned, DonationStatusCancelled},
	DonationStatusAssigned: {DonationStatusPickedUp, DonationStatusCancelled, DonationStatusPending},
	DonationStatusPickedUp: {DonationStatusDelivered},
}

// CanTransition reports whether a donation may move from one status to another.
// assigned -> pending is only taken when an assignment is cancelled.
func CanTransition(from, to string) bool {
	for _, next := range donationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminalStatus(status string) bool {
	return status == DonationStatusDelivered || status == DonationStatusCancelled
}

func IsValidFoodType(foodType string) bool {
	switch foodType {
	case FoodTypePreparedMeals, FoodTypeGroceries, FoodTypeProduce, FoodTypeBakery, FoodTypeOther:
		return true
	}
	return false
}

type (
	CreateDonationRequest struct {
		OrganizationID    string    `json:"organization_id" validate:"required,uuid"`
		FoodType          string    `json:"food_type" validate:"required,oneof=prepared_meals groceries produce bakery other"`
		Quantity          float64   `json:"quantity" validate:"required,gt=0"`
		Description       string    `json:"description" validate:"omitempty,max=2000"`
		Expiry            time.Time `json:"expiry" validate:"required"`
		PickupWindowStart time.Time `json:"pickup_window_start" validate:"required"`
		PickupWindowEnd   time.Time `json:"pickup_window_end" validate:"required,gtfield=PickupWindowStart"`
		TemperatureNotes  string    `json:"temperature_notes" validate:"omitempty,max=500"`
		HandlingNotes     string    `json:"handling_notes" validate:"omitempty,max=500"`
	}

	Donation struct {
		ID                string    `json:"id"`
		OrganizationID    string    `json:"organization_id"`
		OrganizationName  string    `json:"organization_name,omitempty"`
		FoodType          string    `json:"food_type"`
		Quantity          float64   `json:"quantity"`
		Description       string    `json:"description"`
		Expiry            time.Time `json:"expiry"`
		PickupWindowStart time.Time `json:"pickup_window_start"`
		PickupWindowEnd   time.Time `json:"pickup_window_end"`
		Status            string    `json:"status"`
		TemperatureNotes  string    `json:"temperature_notes,omitempty"`
		HandlingNotes     string    `json:"handling_notes,omitempty"`
		CreatedAt         time.Time `json:"created_at"`
		UpdatedAt         time.Time `json:"updated_at"`
	}
)
