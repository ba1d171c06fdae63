package matching

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils"
	"Food-Rescue-Coordinator/internal/utils/database"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"Food-Rescue-Coordinator/pkg/donation"
	"Food-Rescue-Coordinator/pkg/pickup"
	"Food-Rescue-Coordinator/pkg/policy"
	"Food-Rescue-Coordinator/pkg/profile"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	Options struct {
		DistanceMetric string
		// MaxDistanceKm excludes volunteers farther than this from the
		// donation. Zero disables the cut-off.
		MaxDistanceKm float64
		CharityPolicy string
	}

	MatchingService interface {
		// Match assigns the best available volunteer and a verified charity to
		// a pending donation. Nothing is written unless the whole assignment
		// commits.
		Match(ctx context.Context, actor domain.Principal, donationID string) (*entities.Pickup, error)
		// MatchPending runs Match once over every pending, unexpired donation.
		MatchPending(ctx context.Context, actor domain.Principal) (*domain.MatchSummary, error)
	}

	matchingService struct {
		donationService    donation.DonationService
		donationRepository donation.DonationRepository
		profileRepository  profile.ProfileRepository
		pickupRepository   pickup.PickupRepository
		transactor         database.Transactor
		enforcer           policy.Enforcer
		distance           DistanceFunc
		maxDistanceKm      float64
		selector           CharitySelector
		now                func() time.Time
	}

	candidate struct {
		volunteer *entities.Volunteer
		distance  float64
	}
)

// OptionsFromConfig reads the matching keys of the application config.
func OptionsFromConfig() Options {
	return Options{
		DistanceMetric: utils.GetConfig("DISTANCE_METRIC"),
		MaxDistanceKm:  utils.GetFloatConfig("MAX_DISTANCE_KM"),
		CharityPolicy:  utils.GetConfig("CHARITY_POLICY"),
	}
}

func NewMatchingService(
	donationService donation.DonationService,
	donationRepository donation.DonationRepository,
	profileRepository profile.ProfileRepository,
	pickupRepository pickup.PickupRepository,
	transactor database.Transactor,
	enforcer policy.Enforcer,
	opts Options,
) (MatchingService, error) {
	distance, err := DistanceFuncByName(opts.DistanceMetric)
	if err != nil {
		return nil, err
	}
	selector, err := NewCharitySelector(opts.CharityPolicy)
	if err != nil {
		return nil, err
	}
	if opts.MaxDistanceKm < 0 {
		return nil, fmt.Errorf("max distance must not be negative: %v", opts.MaxDistanceKm)
	}
	return &matchingService{
		donationService:    donationService,
		donationRepository: donationRepository,
		profileRepository:  profileRepository,
		pickupRepository:   pickupRepository,
		transactor:         transactor,
		enforcer:           enforcer,
		distance:           distance,
		maxDistanceKm:      opts.MaxDistanceKm,
		selector:           selector,
		now:                time.Now,
	}, nil
}

func (s *matchingService) Match(ctx context.Context, actor domain.Principal, donationID string) (*entities.Pickup, error) {
	if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.MatchingResource()); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(donationID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, domain.ErrParseUUID)
	}

	now := s.now().UTC()
	var assigned *entities.Pickup
	err := s.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		donations := s.donationRepository.WithTx(tx)
		profiles := s.profileRepository.WithTx(tx)
		pickups := s.pickupRepository.WithTx(tx)

		d, err := donations.GetDonationByID(ctx, donationID)
		if err != nil {
			return err
		}
		if d.Status != domain.DonationStatusPending {
			return fmt.Errorf("%w: donation is %s", domain.ErrInvalidTransition, d.Status)
		}
		if !d.Expiry.After(now) {
			return fmt.Errorf("%w: %w", domain.ErrInvalidTransition, domain.ErrDonationExpired)
		}
		if d.Organization == nil || !d.Organization.HasLocation() {
			return fmt.Errorf("%w: organization has no location", domain.ErrNoCandidate)
		}
		origin := Point{Lat: *d.Organization.Latitude, Lng: *d.Organization.Longitude}

		volunteers, err := profiles.ListAvailableVolunteers(ctx)
		if err != nil {
			return err
		}
		ranked := s.rank(origin, volunteers)
		if len(ranked) == 0 {
			return fmt.Errorf("%w: no available volunteer in range", domain.ErrNoCandidate)
		}

		charities, err := profiles.ListVerifiedCharities(ctx)
		if err != nil {
			return err
		}
		charity := s.selector.Select(origin, charities, s.distance)
		if charity == nil {
			return fmt.Errorf("%w: no verified charity", domain.ErrNoCandidate)
		}

		ok, err := donations.TransitionStatus(ctx, donationID, domain.DonationStatusPending, domain.DonationStatusAssigned)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: donation %s changed concurrently", domain.ErrConflict, donationID)
		}
		active, err := pickups.HasActivePickup(ctx, donationID)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("%w: %v", domain.ErrConflict, domain.ErrActivePickupExists)
		}

		var chosen *candidate
		for i := range ranked {
			claimed, err := profiles.ClaimVolunteer(ctx, ranked[i].volunteer.ID.String())
			if err != nil {
				return err
			}
			if claimed {
				chosen = &ranked[i]
				break
			}
		}
		if chosen == nil {
			return fmt.Errorf("%w: every candidate volunteer was claimed concurrently", domain.ErrNoCandidate)
		}

		assigned = &entities.Pickup{
			DonationID:  d.ID,
			VolunteerID: chosen.volunteer.ID,
			CharityID:   charity.ID,
			AssignedAt:  now,
			Active:      true,
		}
		if err := pickups.CreatePickup(ctx, assigned); err != nil {
			return err
		}

		logger.InfoLog("donation matched",
			"donation_id", donationID,
			"volunteer_id", chosen.volunteer.ID,
			"charity_id", charity.ID,
			"distance_km", chosen.distance,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

// rank orders located volunteers by distance, then rating, then id.
func (s *matchingService) rank(origin Point, volunteers []*entities.Volunteer) []candidate {
	ranked := make([]candidate, 0, len(volunteers))
	for _, v := range volunteers {
		if !v.HasLocation() {
			continue
		}
		d := s.distance(origin, Point{Lat: *v.Latitude, Lng: *v.Longitude})
		if s.maxDistanceKm > 0 && d > s.maxDistanceKm {
			continue
		}
		ranked = append(ranked, candidate{volunteer: v, distance: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.volunteer.Rating != b.volunteer.Rating {
			return a.volunteer.Rating > b.volunteer.Rating
		}
		return a.volunteer.ID.String() < b.volunteer.ID.String()
	})
	return ranked
}

func (s *matchingService) MatchPending(ctx context.Context, actor domain.Principal) (*domain.MatchSummary, error) {
	if err := s.enforcer.Authorize(actor, policy.OpWrite, policy.MatchingResource()); err != nil {
		return nil, err
	}
	summary := &domain.MatchSummary{
		Assigned:    []string{},
		NoCandidate: []string{},
		Failed:      map[string]string{},
	}

	for d, err := range s.donationService.ListPending(ctx, s.now()) {
		if err != nil {
			return summary, err
		}
		if err := ctx.Err(); err != nil {
			return summary, database.MapError(err)
		}

		id := d.ID.String()
		_, matchErr := s.Match(ctx, actor, id)
		switch {
		case matchErr == nil:
			summary.Assigned = append(summary.Assigned, id)
		case errors.Is(matchErr, domain.ErrNoCandidate):
			summary.NoCandidate = append(summary.NoCandidate, id)
		default:
			summary.Failed[id] = matchErr.Error()
			logger.WarnLog("match failed", "donation_id", id, "error", matchErr)
		}
	}

	logger.InfoLog("matching pass finished",
		"assigned", len(summary.Assigned),
		"no_candidate", len(summary.NoCandidate),
		"failed", len(summary.Failed),
	)
	return summary, nil
}
