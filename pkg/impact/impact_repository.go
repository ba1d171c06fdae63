package impact

import (
	"Food-Rescue-Coordinator/entities"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ImpactRepository interface {
		WithTx(tx *gorm.DB) ImpactRepository
		// AddToDay adds delta to the row of delta.Date, creating it when absent.
		AddToDay(ctx context.Context, delta *entities.ImpactMetric) error
		GetRange(ctx context.Context, from, to string) ([]*entities.ImpactMetric, error)
	}

	impactRepository struct {
		db *gorm.DB
	}
)

func NewImpactRepository(db *gorm.DB) ImpactRepository {
	return &impactRepository{db: db}
}

func (r *impactRepository) WithTx(tx *gorm.DB) ImpactRepository {
	return &impactRepository{db: tx}
}

func (r *impactRepository) AddToDay(ctx context.Context, delta *entities.ImpactMetric) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"meals_saved":          gorm.Expr("impact_metrics.meals_saved + ?", delta.MealsSaved),
			"kg_food_saved":        gorm.Expr("impact_metrics.kg_food_saved + ?", delta.KgFoodSaved),
			"co2_saved":            gorm.Expr("impact_metrics.co2_saved + ?", delta.CO2Saved),
			"beneficiaries_served": gorm.Expr("impact_metrics.beneficiaries_served + ?", delta.BeneficiariesServed),
			"updated_at":           gorm.Expr("?", delta.UpdatedAt),
		}),
	}).Create(delta).Error
}

func (r *impactRepository) GetRange(ctx context.Context, from, to string) ([]*entities.ImpactMetric, error) {
	var metrics []*entities.ImpactMetric
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}
