package impact

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils/database"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"Food-Rescue-Coordinator/pkg/policy"
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	dateLayout       = "2006-01-02"
	defaultRangeDays = 30
	maxRangeDays     = 366
)

type (
	ImpactService interface {
		// RecordDelivery adds one delivered donation to the metric row of the
		// delivery day. It writes through tx so it commits or rolls back with
		// the delivery itself.
		RecordDelivery(ctx context.Context, tx *gorm.DB, donation *entities.Donation, deliveredAt time.Time) error
		GetMetrics(ctx context.Context, actor domain.Principal, from, to string) ([]*entities.ImpactMetric, *domain.ImpactSummary, error)
	}

	impactService struct {
		impactRepository ImpactRepository
		enforcer         policy.Enforcer
		factors          domain.ImpactFactors
		location         *time.Location
		now              func() time.Time
	}
)

func NewImpactService(impactRepository ImpactRepository, enforcer policy.Enforcer, factors domain.ImpactFactors, location *time.Location) ImpactService {
	if location == nil {
		location = time.UTC
	}
	return &impactService{
		impactRepository: impactRepository,
		enforcer:         enforcer,
		factors:          factors,
		location:         location,
		now:              time.Now,
	}
}

func (s *impactService) RecordDelivery(ctx context.Context, tx *gorm.DB, donation *entities.Donation, deliveredAt time.Time) error {
	delta := s.deltaFor(donation, deliveredAt)
	if err := s.impactRepository.WithTx(tx).AddToDay(ctx, delta); err != nil {
		return err
	}
	logger.DebugLog("impact recorded",
		"date", delta.Date,
		"donation_id", donation.ID,
		"meals", delta.MealsSaved,
		"kg", delta.KgFoodSaved,
	)
	return nil
}

func (s *impactService) deltaFor(donation *entities.Donation, deliveredAt time.Time) *entities.ImpactMetric {
	at := deliveredAt.UTC()
	return &entities.ImpactMetric{
		Date:                DateKey(deliveredAt, s.location),
		MealsSaved:          int64(math.Round(donation.Quantity * s.factors.MealsPerKg)),
		KgFoodSaved:         donation.Quantity,
		CO2Saved:            donation.Quantity * s.factors.CO2PerKg,
		BeneficiariesServed: s.factors.BeneficiariesPerDonation,
		Timestamp: entities.Timestamp{
			CreatedAt: at,
			UpdatedAt: at,
		},
	}
}

func (s *impactService) GetMetrics(ctx context.Context, actor domain.Principal, from, to string) ([]*entities.ImpactMetric, *domain.ImpactSummary, error) {
	if err := s.enforcer.Authorize(actor, policy.OpRead, policy.ImpactMetricResource()); err != nil {
		return nil, nil, err
	}
	from, to, err := s.resolveRange(from, to)
	if err != nil {
		return nil, nil, err
	}

	metrics, err := s.impactRepository.GetRange(ctx, from, to)
	if err != nil {
		return nil, nil, database.MapError(err)
	}

	summary := &domain.ImpactSummary{From: from, To: to}
	for _, m := range metrics {
		summary.MealsSaved += m.MealsSaved
		summary.KgFoodSaved += m.KgFoodSaved
		summary.CO2Saved += m.CO2Saved
		summary.BeneficiariesServed += m.BeneficiariesServed
	}
	return metrics, summary, nil
}

// resolveRange defaults an empty bound and rejects malformed or inverted ranges.
func (s *impactService) resolveRange(from, to string) (string, string, error) {
	var end time.Time
	if to == "" {
		end = s.now().In(s.location)
	} else {
		parsed, err := time.ParseInLocation(dateLayout, to, s.location)
		if err != nil {
			return "", "", fmt.Errorf("%w: to must be YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		end = parsed
	}

	var start time.Time
	if from == "" {
		start = end.AddDate(0, 0, -defaultRangeDays)
	} else {
		parsed, err := time.ParseInLocation(dateLayout, from, s.location)
		if err != nil {
			return "", "", fmt.Errorf("%w: from must be YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		start = parsed
	}

	startKey, endKey := start.Format(dateLayout), end.Format(dateLayout)
	if startKey > endKey {
		return "", "", fmt.Errorf("%w: from is after to", domain.ErrInvalidRequest)
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return "", "", fmt.Errorf("%w: range exceeds %d days", domain.ErrInvalidRequest, maxRangeDays)
	}
	return startKey, endKey, nil
}

// DateKey is the metric row key of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
