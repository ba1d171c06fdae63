package profile

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils"
	"Food-Rescue-Coordinator/internal/utils/database"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"Food-Rescue-Coordinator/pkg/policy"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultVolunteerRating = 5.0

type (
	ProfileService interface {
		CreateOrganization(ctx context.Context, actor domain.Principal, req domain.OrganizationRequest) (*entities.Organization, error)
		UpdateOrganization(ctx context.Context, actor domain.Principal, id string, req domain.OrganizationRequest) (*entities.Organization, error)
		GetOrganization(ctx context.Context, actor domain.Principal, id string) (*entities.Organization, error)
		SetOrganizationVerified(ctx context.Context, actor domain.Principal, id string, verified bool) (*entities.Organization, error)

		CreateCharity(ctx context.Context, actor domain.Principal, req domain.OrganizationRequest) (*entities.Charity, error)
		UpdateCharity(ctx context.Context, actor domain.Principal, id string, req domain.OrganizationRequest) (*entities.Charity, error)
		GetCharity(ctx context.Context, actor domain.Principal, id string) (*entities.Charity, error)
		SetCharityVerified(ctx context.Context, actor domain.Principal, id string, verified bool) (*entities.Charity, error)

		CreateVolunteer(ctx context.Context, actor domain.Principal, req domain.VolunteerRequest) (*entities.Volunteer, error)
		// UpdateVolunteerLocation only touches coordinates. Availability belongs
		// to the matching engine and the pickup tracker.
		UpdateVolunteerLocation(ctx context.Context, actor domain.Principal, id string, req domain.VolunteerRequest) (*entities.Volunteer, error)
		GetVolunteer(ctx context.Context, actor domain.Principal, id string) (*entities.Volunteer, error)
	}

	profileService struct {
		profileRepository ProfileRepository
		enforcer          policy.Enforcer
	}
)

func NewProfileService(profileRepository ProfileRepository, enforcer policy.Enforcer) ProfileService {
	return &profileService{
		profileRepository: profileRepository,
		enforcer:          enforcer,
	}
}

func (s *profileService) CreateOrganization(ctx context.Context, actor domain.Principal, req domain.OrganizationRequest) (*entities.Organization, error) {
	userID, err := s.ownerFor(actor, domain.RoleDonor)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	_, err = s.profileRepository.GetOrganizationByUserID(ctx, userID.String())
	if err = existsCheck(err); err != nil {
		return nil, err
	}

	org := &entities.Organization{
		UserID:       userID,
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	}
	if err := s.profileRepository.CreateOrganization(ctx, org); err != nil {
		return nil, database.MapError(err)
	}
	logger.InfoLog("organization created", "organization_id", org.ID, "user_id", userID)
	return org, nil
}

func (s *profileService) UpdateOrganization(ctx context.Context, actor domain.Principal, id string, req domain.OrganizationRequest) (*entities.Organization, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	org, err := s.getOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.OrganizationResource(org)); err != nil {
		return nil, err
	}

	err = s.profileRepository.UpdateOrganization(ctx, id, map[string]interface{}{
		"name":          req.Name,
		"address":       req.Address,
		"latitude":      req.Latitude,
		"longitude":     req.Longitude,
		"contact_phone": req.ContactPhone,
		"contact_email": req.ContactEmail,
	})
	if err != nil {
		return nil, database.MapError(err)
	}
	return s.getOrganization(ctx, id)
}

func (s *profileService) GetOrganization(ctx context.Context, actor domain.Principal, id string) (*entities.Organization, error) {
	org, err := s.getOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, policy.OpRead, policy.OrganizationResource(org)); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *profileService) SetOrganizationVerified(ctx context.Context, actor domain.Principal, id string, verified bool) (*entities.Organization, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins verify organizations", domain.ErrForbidden)
	}
	if _, err := s.getOrganization(ctx, id); err != nil {
		return nil, err
	}
	if err := s.profileRepository.UpdateOrganization(ctx, id, map[string]interface{}{"verified": verified}); err != nil {
		return nil, database.MapError(err)
	}
	logger.InfoLog("organization verification changed", "organization_id", id, "verified", verified)
	return s.getOrganization(ctx, id)
}

func (s *profileService) CreateCharity(ctx context.Context, actor domain.Principal, req domain.OrganizationRequest) (*entities.Charity, error) {
	userID, err := s.ownerFor(actor, domain.RoleCharity)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	_, err = s.profileRepository.GetCharityByUserID(ctx, userID.String())
	if err = existsCheck(err); err != nil {
		return nil, err
	}

	charity := &entities.Charity{
		UserID:             userID,
		Name:               req.Name,
		Address:            req.Address,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		ContactPhone:       req.ContactPhone,
		ContactEmail:       req.ContactEmail,
		RegistrationNumber: req.RegistrationNumber,
	}
	if err := s.profileRepository.CreateCharity(ctx, charity); err != nil {
		return nil, database.MapError(err)
	}
	logger.InfoLog("charity created", "charity_id", charity.ID, "user_id", userID)
	return charity, nil
}

func (s *profileService) UpdateCharity(ctx context.Context, actor domain.Principal, id string, req domain.OrganizationRequest) (*entities.Charity, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	charity, err := s.getCharity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.CharityResource(charity)); err != nil {
		return nil, err
	}

	err = s.profileRepository.UpdateCharity(ctx, id, map[string]interface{}{
		"name":                req.Name,
		"address":             req.Address,
		"latitude":            req.Latitude,
		"longitude":           req.Longitude,
		"contact_phone":       req.ContactPhone,
		"contact_email":       req.ContactEmail,
		"registration_number": req.RegistrationNumber,
	})
	if err != nil {
		return nil, database.MapError(err)
	}
	return s.getCharity(ctx, id)
}

func (s *profileService) GetCharity(ctx context.Context, actor domain.Principal, id string) (*entities.Charity, error) {
	charity, err := s.getCharity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, policy.OpRead, policy.CharityResource(charity)); err != nil {
		return nil, err
	}
	return charity, nil
}

func (s *profileService) SetCharityVerified(ctx context.Context, actor domain.Principal, id string, verified bool) (*entities.Charity, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins verify charities", domain.ErrForbidden)
	}
	if _, err := s.getCharity(ctx, id); err != nil {
		return nil, err
	}
	if err := s.profileRepository.UpdateCharity(ctx, id, map[string]interface{}{"verified": verified}); err != nil {
		return nil, database.MapError(err)
	}
	logger.InfoLog("charity verification changed", "charity_id", id, "verified", verified)
	return s.getCharity(ctx, id)
}

func (s *profileService) CreateVolunteer(ctx context.Context, actor domain.Principal, req domain.VolunteerRequest) (*entities.Volunteer, error) {
	userID, err := s.ownerFor(actor, domain.RoleVolunteer)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	_, err = s.profileRepository.GetVolunteerByUserID(ctx, userID.String())
	if err = existsCheck(err); err != nil {
		return nil, err
	}

	volunteer := &entities.Volunteer{
		UserID:    userID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Available: true,
		Rating:    defaultVolunteerRating,
	}
	if err := s.profileRepository.CreateVolunteer(ctx, volunteer); err != nil {
		return nil, database.MapError(err)
	}
	logger.InfoLog("volunteer created", "volunteer_id", volunteer.ID, "user_id", userID)
	return volunteer, nil
}

func (s *profileService) UpdateVolunteerLocation(ctx context.Context, actor domain.Principal, id string, req domain.VolunteerRequest) (*entities.Volunteer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateLocation(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	volunteer, err := s.getVolunteer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.VolunteerResource(volunteer)); err != nil {
		return nil, err
	}

	err = s.profileRepository.UpdateVolunteer(ctx, id, map[string]interface{}{
		"latitude":  req.Latitude,
		"longitude": req.Longitude,
	})
	if err != nil {
		return nil, database.MapError(err)
	}
	return s.getVolunteer(ctx, id)
}

func (s *profileService) GetVolunteer(ctx context.Context, actor domain.Principal, id string) (*entities.Volunteer, error) {
	volunteer, err := s.getVolunteer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, policy.OpRead, policy.VolunteerResource(volunteer)); err != nil {
		return nil, err
	}
	return volunteer, nil
}

// ownerFor returns the actor's user id when its role may own the profile kind.
func (s *profileService) ownerFor(actor domain.Principal, role string) (uuid.UUID, error) {
	if actor.Role != role {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrForbidden, domain.ErrProfileRoleMatch)
	}
	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrForbidden, domain.ErrParseUUID)
	}
	return userID, nil
}

func (s *profileService) getOrganization(ctx context.Context, id string) (*entities.Organization, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	org, err := s.profileRepository.GetOrganizationByID(ctx, id)
	if err != nil {
		return nil, database.MapError(err)
	}
	return org, nil
}

func (s *profileService) getCharity(ctx context.Context, id string) (*entities.Charity, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	charity, err := s.profileRepository.GetCharityByID(ctx, id)
	if err != nil {
		return nil, database.MapError(err)
	}
	return charity, nil
}

func (s *profileService) getVolunteer(ctx context.Context, id string) (*entities.Volunteer, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	volunteer, err := s.profileRepository.GetVolunteerByID(ctx, id)
	if err != nil {
		return nil, database.MapError(err)
	}
	return volunteer, nil
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, domain.ErrParseUUID)
	}
	return nil
}

// existsCheck turns the lookup of an existing profile into a create decision.
func existsCheck(err error) error {
	switch {
	case err == nil:
		return fmt.Errorf("%w: %v", domain.ErrConflict, domain.ErrProfileExists)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return database.MapError(err)
	}
}

// validateLocation rejects half-set coordinates.
func validateLocation(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return fmt.Errorf("%w: latitude and longitude must be set together", domain.ErrInvalidRequest)
	}
	return nil
}
