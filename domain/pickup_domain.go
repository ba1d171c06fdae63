package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessGetPickup        = "pickup retrieved successfully"
	MessageSuccessConfirmPickup    = "pickup confirmed successfully"
	MessageSuccessConfirmDelivery  = "delivery confirmed successfully"
	MessageSuccessCancelAssignment = "assignment cancelled successfully"
	MessageSuccessUploadProof      = "proof uploaded successfully"
	MessageSuccessMatchDonation    = "donation matched successfully"
	MessageSuccessMatchPending     = "matching pass completed"

	MessageFailedGetPickup        = "failed to retrieve pickup"
	MessageFailedConfirmPickup    = "failed to confirm pickup"
	MessageFailedConfirmDelivery  = "failed to confirm delivery"
	MessageFailedCancelAssignment = "failed to cancel assignment"
	MessageFailedUploadProof      = "failed to upload proof"
	MessageFailedMatchDonation    = "failed to match donation"
	MessageFailedMatchPending     = "failed to run matching pass"

	ErrPickupNotFound     = errors.New("pickup not found")
	ErrPickupInactive     = errors.New("pickup is no longer active")
	ErrAlreadyPickedUp    = errors.New("pickup already collected")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrActivePickupExists = errors.New("donation already has an active pickup")
)

type (
	ConfirmPickupRequest struct {
		ProofRef string `json:"proof_ref" form:"proof_ref" validate:"omitempty,max=1024"`
		Notes    string `json:"notes" form:"notes" validate:"omitempty,max=2000"`
	}

	ConfirmDeliveryRequest struct {
		ProofRef string `json:"proof_ref" form:"proof_ref" validate:"omitempty,max=1024"`
		Rating   *int   `json:"rating" form:"rating" validate:"omitempty,min=1,max=5"`
		Notes    string `json:"notes" form:"notes" validate:"omitempty,max=2000"`
	}

	UploadProofRequest struct {
		PickupID string                `form:"pickup_id" validate:"required,uuid"`
		Kind     string                `form:"kind" validate:"required,oneof=pickup delivery"`
		Image    *multipart.FileHeader `form:"image" validate:"required"`
	}

	UploadProofResponse struct {
		ProofRef string `json:"proof_ref"`
		URL      string `json:"url"`
	}

	Pickup struct {
		ID              string     `json:"id"`
		DonationID      string     `json:"donation_id"`
		DonationStatus  string     `json:"donation_status,omitempty"`
		VolunteerID     string     `json:"volunteer_id"`
		CharityID       string     `json:"charity_id"`
		AssignedAt      time.Time  `json:"assigned_at"`
		PickedUpAt      *time.Time `json:"picked_up_at,omitempty"`
		DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
		ProofOfPickup   *string    `json:"proof_of_pickup,omitempty"`
		ProofOfDelivery *string    `json:"proof_of_delivery,omitempty"`
		Notes           string     `json:"notes,omitempty"`
		Rating          *int       `json:"rating,omitempty"`
		Active          bool       `json:"active"`
	}

	MatchSummary struct {
		Assigned    []string          `json:"assigned"`
		NoCandidate []string          `json:"no_candidate"`
		Failed      map[string]string `json:"failed,omitempty"`
	}
)

func ValidRating(rating *int) bool {
	return rating == nil || (*rating >= 1 && *rating <= 5)
}
