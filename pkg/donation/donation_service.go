package donation

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils"
	"Food-Rescue-Coordinator/internal/utils/database"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"Food-Rescue-Coordinator/pkg/policy"
	"Food-Rescue-Coordinator/pkg/profile"
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const pendingBatchSize = 100

type (
	// AssignmentReleaser undoes the assignment of a donation inside the
	// caller's transaction: the active pickup is deactivated and its
	// volunteer becomes available again.
	AssignmentReleaser interface {
		ReleaseAssignment(ctx context.Context, tx *gorm.DB, donationID string, now time.Time) error
	}

	DonationService interface {
		CreateDonation(ctx context.Context, actor domain.Principal, req domain.CreateDonationRequest) (*entities.Donation, error)
		CancelDonation(ctx context.Context, actor domain.Principal, donationID string) (*entities.Donation, error)
		// ListPending lazily yields pending donations that expire after now.
		// Rows are fetched in batches; no connection is held between yields.
		ListPending(ctx context.Context, now time.Time) iter.Seq2[*entities.Donation, error]
		GetDonation(ctx context.Context, actor domain.Principal, donationID string) (*entities.Donation, error)
		ListOrganizationDonations(ctx context.Context, actor domain.Principal, organizationID string, page, limit int) ([]*entities.Donation, int64, error)
	}

	donationService struct {
		donationRepository DonationRepository
		profileRepository  profile.ProfileRepository
		releaser           AssignmentReleaser
		transactor         database.Transactor
		enforcer           policy.Enforcer
		now                func() time.Time
		batchSize          int
	}
)

func NewDonationService(
	donationRepository DonationRepository,
	profileRepository profile.ProfileRepository,
	releaser AssignmentReleaser,
	transactor database.Transactor,
	enforcer policy.Enforcer,
) DonationService {
	return &donationService{
		donationRepository: donationRepository,
		profileRepository:  profileRepository,
		releaser:           releaser,
		transactor:         transactor,
		enforcer:           enforcer,
		now:                time.Now,
		batchSize:          pendingBatchSize,
	}
}

func (s *donationService) CreateDonation(ctx context.Context, actor domain.Principal, req domain.CreateDonationRequest) (*entities.Donation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !req.PickupWindowEnd.After(req.PickupWindowStart) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, domain.ErrInvalidPickupWindow)
	}

	org, err := s.profileRepository.GetOrganizationByID(ctx, req.OrganizationID)
	if err != nil {
		return nil, database.MapError(err)
	}
	if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.DonationResource(org)); err != nil {
		return nil, err
	}

	donation := &entities.Donation{
		ID:                uuid.New(),
		OrganizationID:    org.ID,
		FoodType:          req.FoodType,
		Quantity:          req.Quantity,
		Description:       req.Description,
		Expiry:            req.Expiry.UTC(),
		PickupWindowStart: req.PickupWindowStart.UTC(),
		PickupWindowEnd:   req.PickupWindowEnd.UTC(),
		Status:            domain.DonationStatusPending,
		TemperatureNotes:  req.TemperatureNotes,
		HandlingNotes:     req.HandlingNotes,
	}
	if err := s.donationRepository.CreateDonation(ctx, donation); err != nil {
		return nil, database.MapError(err)
	}
	donation.Organization = org

	logger.InfoLog("donation created",
		"donation_id", donation.ID,
		"organization_id", org.ID,
		"food_type", donation.FoodType,
		"quantity_kg", donation.Quantity,
	)
	return donation, nil
}

func (s *donationService) CancelDonation(ctx context.Context, actor domain.Principal, donationID string) (*entities.Donation, error) {
	if err := parseID(donationID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var from string
	err := s.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.donationRepository.WithTx(tx)
		donation, err := repo.GetDonationByID(ctx, donationID)
		if err != nil {
			return err
		}
		if donation.Organization == nil {
			return fmt.Errorf("%w: organization of donation %s", domain.ErrNotFound, donationID)
		}
		if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.DonationResource(donation.Organization)); err != nil {
			return err
		}

		from = donation.Status
		if !domain.CanTransition(from, domain.DonationStatusCancelled) {
			return fmt.Errorf("%w: cannot cancel a %s donation", domain.ErrInvalidTransition, from)
		}
		ok, err := repo.TransitionStatus(ctx, donationID, from, domain.DonationStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: donation %s changed concurrently", domain.ErrConflict, donationID)
		}

		if from == domain.DonationStatusAssigned {
			return s.releaser.ReleaseAssignment(ctx, tx, donationID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLog("donation cancelled", "donation_id", donationID, "from", from, "by", actor.UserID)
	return s.getDonation(ctx, donationID)
}

func (s *donationService) ListPending(ctx context.Context, now time.Time) iter.Seq2[*entities.Donation, error] {
	now = now.UTC()
	return func(yield func(*entities.Donation, error) bool) {
		var cursor *PendingCursor
		for {
			batch, err := s.donationRepository.GetPendingBatch(ctx, now, cursor, s.batchSize)
			if err != nil {
				yield(nil, database.MapError(err))
				return
			}
			for _, donation := range batch {
				if !yield(donation, nil) {
					return
				}
			}
			if len(batch) < s.batchSize {
				return
			}
			last := batch[len(batch)-1]
			cursor = &PendingCursor{Expiry: last.Expiry, ID: last.ID.String()}
		}
	}
}

func (s *donationService) GetDonation(ctx context.Context, actor domain.Principal, donationID string) (*entities.Donation, error) {
	donation, err := s.getDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	resource := policy.Resource{Family: policy.FamilyDonation}
	if donation.Organization != nil {
		resource = policy.DonationResource(donation.Organization)
	}
	if err := s.enforcer.Authorize(actor, policy.OpRead, resource); err != nil {
		return nil, err
	}
	return donation, nil
}

func (s *donationService) ListOrganizationDonations(ctx context.Context, actor domain.Principal, organizationID string, page, limit int) ([]*entities.Donation, int64, error) {
	if err := parseID(organizationID); err != nil {
		return nil, 0, err
	}
	org, err := s.profileRepository.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, 0, database.MapError(err)
	}
	if err := s.enforcer.Authorize(actor, policy.OpRead, policy.DonationResource(org)); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	donations, total, err := s.donationRepository.GetOrganizationDonations(ctx, organizationID, page, limit)
	if err != nil {
		return nil, 0, database.MapError(err)
	}
	return donations, total, nil
}

func (s *donationService) getDonation(ctx context.Context, donationID string) (*entities.Donation, error) {
	if err := parseID(donationID); err != nil {
		return nil, err
	}
	donation, err := s.donationRepository.GetDonationByID(ctx, donationID)
	if err != nil {
		return nil, database.MapError(err)
	}
	return donation, nil
}

// ToResponse flattens a donation for transport.
func ToResponse(d *entities.Donation) *domain.Donation {
	res := &domain.Donation{
		ID:                d.ID.String(),
		OrganizationID:    d.OrganizationID.String(),
		FoodType:          d.FoodType,
		Quantity:          d.Quantity,
		Description:       d.Description,
		Expiry:            d.Expiry,
		PickupWindowStart: d.PickupWindowStart,
		PickupWindowEnd:   d.PickupWindowEnd,
		Status:            d.Status,
		TemperatureNotes:  d.TemperatureNotes,
		HandlingNotes:     d.HandlingNotes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.Organization != nil {
		res.OrganizationName = d.Organization.Name
	}
	return res
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, domain.ErrParseUUID)
	}
	return nil
}
