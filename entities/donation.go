package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Donation struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID    uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	FoodType          string    `gorm:"not null" json:"food_type"` // prepared_meals, groceries, produce, bakery, other
	Quantity          float64   `json:"quantity"`                  // kg
	Description       string    `gorm:"type:text" json:"description"`
	Expiry            time.Time `gorm:"type:timestamp;index" json:"expiry"`
	PickupWindowStart time.Time `gorm:"type:timestamp" json:"pickup_window_start"`
	PickupWindowEnd   time.Time `gorm:"type:timestamp" json:"pickup_window_end"`
	Status            string    `gorm:"index;not null" json:"status"`
	TemperatureNotes  string    `json:"temperature_notes,omitempty"`
	HandlingNotes     string    `json:"handling_notes,omitempty"`
	Version           int64     `json:"-"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Timestamp
}

type Pickup struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	DonationID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"donation_id"`
	VolunteerID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"volunteer_id"`
	CharityID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"charity_id"`
	AssignedAt      time.Time  `gorm:"type:timestamp" json:"assigned_at"`
	PickedUpAt      *time.Time `gorm:"type:timestamp" json:"picked_up_at,omitempty"`
	DeliveredAt     *time.Time `gorm:"type:timestamp" json:"delivered_at,omitempty"`
	ProofOfPickup   *string    `json:"proof_of_pickup,omitempty"`
	ProofOfDelivery *string    `json:"proof_of_delivery,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	Rating          *int       `json:"rating,omitempty"`
	Active          bool       `gorm:"index" json:"active"`
	CancelledAt     *time.Time `gorm:"type:timestamp" json:"cancelled_at,omitempty"`

	Donation  *Donation  `gorm:"foreignKey:DonationID" json:"donation,omitempty"`
	Volunteer *Volunteer `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	Charity   *Charity   `gorm:"foreignKey:CharityID" json:"charity,omitempty"`
	Timestamp
}

func (d *Donation) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (p *Pickup) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
