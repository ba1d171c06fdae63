package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImpactMetric struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Date                string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"` // YYYY-MM-DD
	MealsSaved          int64     `json:"meals_saved"`
	KgFoodSaved         float64   `json:"kg_food_saved"`
	CO2Saved            float64   `gorm:"column:co2_saved" json:"co2_saved"`
	BeneficiariesServed int64     `json:"beneficiaries_served"`

	Timestamp
}

func (m *ImpactMetric) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
