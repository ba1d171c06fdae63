package domain

import "errors"

var (
	MessageSuccessCreateProfile = "profile created successfully"
	MessageSuccessUpdateProfile = "profile updated successfully"
	MessageSuccessGetProfile    = "profile retrieved successfully"
	MessageSuccessVerify        = "verification updated successfully"

	MessageFailedCreateProfile = "failed to create profile"
	MessageFailedUpdateProfile = "failed to update profile"
	MessageFailedGetProfile    = "failed to retrieve profile"
	MessageFailedVerify        = "failed to update verification"

	ErrProfileExists    = errors.New("profile already exists for user")
	ErrProfileRoleMatch = errors.New("user role does not match profile type")
)

type (
	// OrganizationRequest is shared by organization and charity profiles.
	OrganizationRequest struct {
		Name               string   `json:"name" validate:"required,max=200"`
		Address            string   `json:"address" validate:"required,max=500"`
		Latitude           *float64 `json:"latitude" validate:"omitempty,latitude"`
		Longitude          *float64 `json:"longitude" validate:"omitempty,longitude"`
		ContactPhone       string   `json:"contact_phone" validate:"omitempty,max=50"`
		ContactEmail       string   `json:"contact_email" validate:"omitempty,email"`
		RegistrationNumber string   `json:"registration_number" validate:"omitempty,max=100"`
	}

	VolunteerRequest struct {
		Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
		Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	}

	VerifyRequest struct {
		Verified bool `json:"verified"`
	}

	CreateUserRequest struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Phone string `json:"phone" validate:"omitempty"`
		Role  string `json:"role" validate:"required,oneof=admin donor charity volunteer"`
	}
)
