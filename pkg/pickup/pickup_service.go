package pickup

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils"
	"Food-Rescue-Coordinator/internal/utils/database"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"Food-Rescue-Coordinator/internal/utils/storage"
	"Food-Rescue-Coordinator/pkg/donation"
	"Food-Rescue-Coordinator/pkg/impact"
	"Food-Rescue-Coordinator/pkg/policy"
	"Food-Rescue-Coordinator/pkg/profile"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProofKindPickup   = "pickup"
	ProofKindDelivery = "delivery"
)

type (
	PickupService interface {
		ConfirmPickup(ctx context.Context, actor domain.Principal, pickupID string, req domain.ConfirmPickupRequest) (*entities.Pickup, error)
		ConfirmDelivery(ctx context.Context, actor domain.Principal, pickupID string, req domain.ConfirmDeliveryRequest) (*entities.Pickup, error)
		CancelAssignment(ctx context.Context, actor domain.Principal, pickupID string) (*entities.Pickup, error)
		GetPickup(ctx context.Context, actor domain.Principal, pickupID string) (*entities.Pickup, error)
		ListMyPickups(ctx context.Context, actor domain.Principal) ([]*entities.Pickup, error)
		UploadProof(ctx context.Context, actor domain.Principal, req domain.UploadProofRequest) (*domain.UploadProofResponse, error)
	}

	pickupService struct {
		pickupRepository   PickupRepository
		donationRepository donation.DonationRepository
		profileRepository  profile.ProfileRepository
		impactService      impact.ImpactService
		transactor         database.Transactor
		enforcer           policy.Enforcer
		s3                 storage.AwsS3
		now                func() time.Time
	}

	// AssignmentReleaser undoes the assignment of a donation that is being
	// cancelled by its organization.
	AssignmentReleaser struct {
		pickupRepository  PickupRepository
		profileRepository profile.ProfileRepository
	}
)

func NewPickupService(
	pickupRepository PickupRepository,
	donationRepository donation.DonationRepository,
	profileRepository profile.ProfileRepository,
	impactService impact.ImpactService,
	transactor database.Transactor,
	enforcer policy.Enforcer,
	s3 storage.AwsS3,
) PickupService {
	return &pickupService{
		pickupRepository:   pickupRepository,
		donationRepository: donationRepository,
		profileRepository:  profileRepository,
		impactService:      impactService,
		transactor:         transactor,
		enforcer:           enforcer,
		s3:                 s3,
		now:                time.Now,
	}
}

func NewAssignmentReleaser(pickupRepository PickupRepository, profileRepository profile.ProfileRepository) *AssignmentReleaser {
	return &AssignmentReleaser{
		pickupRepository:  pickupRepository,
		profileRepository: profileRepository,
	}
}

func (r *AssignmentReleaser) ReleaseAssignment(ctx context.Context, tx *gorm.DB, donationID string, now time.Time) error {
	pickup, err := r.pickupRepository.WithTx(tx).GetActivePickupByDonation(ctx, donationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: assigned donation %s has no active pickup", domain.ErrConflict, donationID)
		}
		return err
	}
	return release(ctx, tx, r.pickupRepository, r.profileRepository, pickup, now)
}

// release deactivates pickup and makes its volunteer available again.
func release(ctx context.Context, tx *gorm.DB, pickups PickupRepository, profiles profile.ProfileRepository, pickup *entities.Pickup, now time.Time) error {
	ok, err := pickups.WithTx(tx).Deactivate(ctx, pickup.ID.String(), now)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: pickup %s changed concurrently", domain.ErrConflict, pickup.ID)
	}

	ok, err = profiles.WithTx(tx).ReleaseVolunteer(ctx, pickup.VolunteerID.String())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: volunteer %s was not assigned", domain.ErrConflict, pickup.VolunteerID)
	}
	return nil
}

func (s *pickupService) ConfirmPickup(ctx context.Context, actor domain.Principal, pickupID string, req domain.ConfirmPickupRequest) (*entities.Pickup, error) {
	if err := parseID(pickupID); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err := s.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		pickup, err := s.pickupRepository.WithTx(tx).GetPickupByID(ctx, pickupID)
		if err != nil {
			return err
		}
		if err := s.authorizeVolunteer(actor, pickup); err != nil {
			return err
		}
		if !pickup.Active {
			return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, domain.ErrPickupInactive)
		}

		if err := s.transition(ctx, tx, pickup.Donation, domain.DonationStatusPickedUp); err != nil {
			return err
		}
		ok, err := s.pickupRepository.WithTx(tx).MarkPickedUp(ctx, pickupID, now, optional(req.ProofRef), req.Notes)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, domain.ErrAlreadyPickedUp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLog("pickup confirmed", "pickup_id", pickupID, "by", actor.UserID)
	return s.getPickup(ctx, pickupID)
}

func (s *pickupService) ConfirmDelivery(ctx context.Context, actor domain.Principal, pickupID string, req domain.ConfirmDeliveryRequest) (*entities.Pickup, error) {
	if err := parseID(pickupID); err != nil {
		return nil, err
	}
	if !domain.ValidRating(req.Rating) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, domain.ErrInvalidRating)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err := s.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		pickup, err := s.pickupRepository.WithTx(tx).GetPickupByID(ctx, pickupID)
		if err != nil {
			return err
		}
		if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.PickupResource(pickup)); err != nil {
			return err
		}
		if !pickup.Active {
			return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, domain.ErrPickupInactive)
		}

		if err := s.transition(ctx, tx, pickup.Donation, domain.DonationStatusDelivered); err != nil {
			return err
		}
		ok, err := s.pickupRepository.WithTx(tx).MarkDelivered(ctx, pickupID, now, optional(req.ProofRef), req.Rating, req.Notes)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: pickup %s is not awaiting delivery", domain.ErrInvalidTransition, pickupID)
		}

		ok, err = s.profileRepository.WithTx(tx).CompleteVolunteerDelivery(ctx, pickup.VolunteerID.String(), req.Rating)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: volunteer %s was not on a pickup", domain.ErrConflict, pickup.VolunteerID)
		}

		return s.impactService.RecordDelivery(ctx, tx, pickup.Donation, now)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLog("delivery confirmed", "pickup_id", pickupID, "by", actor.UserID)
	return s.getPickup(ctx, pickupID)
}

func (s *pickupService) CancelAssignment(ctx context.Context, actor domain.Principal, pickupID string) (*entities.Pickup, error) {
	if err := parseID(pickupID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err := s.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		pickup, err := s.pickupRepository.WithTx(tx).GetPickupByID(ctx, pickupID)
		if err != nil {
			return err
		}
		if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.PickupResource(pickup)); err != nil {
			return err
		}
		if !pickup.Active {
			return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, domain.ErrPickupInactive)
		}
		if pickup.PickedUpAt != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, domain.ErrAlreadyPickedUp)
		}

		if err := s.transition(ctx, tx, pickup.Donation, domain.DonationStatusPending); err != nil {
			return err
		}
		return release(ctx, tx, s.pickupRepository, s.profileRepository, pickup, now)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLog("assignment cancelled", "pickup_id", pickupID, "by", actor.UserID)
	return s.getPickup(ctx, pickupID)
}

func (s *pickupService) GetPickup(ctx context.Context, actor domain.Principal, pickupID string) (*entities.Pickup, error) {
	pickup, err := s.getPickup(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, policy.OpRead, policy.PickupResource(pickup)); err != nil {
		return nil, err
	}
	return pickup, nil
}

func (s *pickupService) ListMyPickups(ctx context.Context, actor domain.Principal) ([]*entities.Pickup, error) {
	if _, err := uuid.Parse(actor.UserID); err != nil || !domain.IsValidRole(actor.Role) {
		return nil, fmt.Errorf("%w: unknown principal", domain.ErrForbidden)
	}
	pickups, err := s.pickupRepository.GetPickupsForUser(ctx, actor)
	if err != nil {
		return nil, database.MapError(err)
	}
	return pickups, nil
}

func (s *pickupService) UploadProof(ctx context.Context, actor domain.Principal, req domain.UploadProofRequest) (*domain.UploadProofResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	pickup, err := s.getPickup(ctx, req.PickupID)
	if err != nil {
		return nil, err
	}
	if req.Kind == ProofKindPickup {
		err = s.authorizeVolunteer(actor, pickup)
	} else {
		err = s.enforcer.Authorize(actor, policy.OpWrite, policy.PickupResource(pickup))
	}
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-%s-%d", req.Kind, pickup.ID, s.now().UnixNano())
	key, err := s.s3.UploadFile(ctx, name, req.Image, "proofs/"+req.Kind, storage.AllowImage...)
	if err != nil {
		logger.WarnLog("proof upload failed", "pickup_id", pickup.ID, "kind", req.Kind, "error", err)
		return nil, err
	}
	return &domain.UploadProofResponse{
		ProofRef: key,
		URL:      s.s3.GetPublicLinkKey(key),
	}, nil
}

// authorizeVolunteer admits the assigned volunteer and admins only.
func (s *pickupService) authorizeVolunteer(actor domain.Principal, pickup *entities.Pickup) error {
	if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.PickupResource(pickup)); err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.Role != domain.RoleVolunteer {
		return fmt.Errorf("%w: only the assigned volunteer may do this", domain.ErrForbidden)
	}
	return nil
}

// transition moves the donation of a pickup to status inside tx.
func (s *pickupService) transition(ctx context.Context, tx *gorm.DB, d *entities.Donation, status string) error {
	if d == nil {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, domain.ErrDonationNotFound)
	}
	if !domain.CanTransition(d.Status, status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, d.Status, status)
	}
	ok, err := s.donationRepository.WithTx(tx).TransitionStatus(ctx, d.ID.String(), d.Status, status)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: donation %s changed concurrently", domain.ErrConflict, d.ID)
	}
	d.Status = status
	return nil
}

func (s *pickupService) getPickup(ctx context.Context, pickupID string) (*entities.Pickup, error) {
	if err := parseID(pickupID); err != nil {
		return nil, err
	}
	pickup, err := s.pickupRepository.GetPickupByID(ctx, pickupID)
	if err != nil {
		return nil, database.MapError(err)
	}
	return pickup, nil
}

// ToResponse flattens a pickup for transport.
func ToResponse(p *entities.Pickup) *domain.Pickup {
	res := &domain.Pickup{
		ID:              p.ID.String(),
		DonationID:      p.DonationID.String(),
		VolunteerID:     p.VolunteerID.String(),
		CharityID:       p.CharityID.String(),
		AssignedAt:      p.AssignedAt,
		PickedUpAt:      p.PickedUpAt,
		DeliveredAt:     p.DeliveredAt,
		ProofOfPickup:   p.ProofOfPickup,
		ProofOfDelivery: p.ProofOfDelivery,
		Notes:           p.Notes,
		Rating:          p.Rating,
		Active:          p.Active,
	}
	if p.Donation != nil {
		res.DonationStatus = p.Donation.Status
	}
	return res
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, domain.ErrParseUUID)
	}
	return nil
}
