package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Verified     bool      `json:"verified"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

type Charity struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`
	ContactPhone       string    `json:"contact_phone,omitempty"`
	ContactEmail       string    `json:"contact_email,omitempty"`
	RegistrationNumber string    `json:"registration_number"`
	Verified           bool      `json:"verified"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

type Volunteer struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Latitude     *float64  `json:"latitude,omitempty"` // last known
	Longitude    *float64  `json:"longitude,omitempty"`
	Available    bool      `gorm:"index" json:"available"`
	TotalPickups int       `json:"total_pickups"`
	Rating       float64   `gorm:"not null;default:5" json:"rating"`
	RatingCount  int       `json:"rating_count"`
	Version      int64     `json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

func (o *Organization) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (c *Charity) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (v *Volunteer) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// HasLocation reports whether both coordinates are known.
func (o *Organization) HasLocation() bool {
	return o.Latitude != nil && o.Longitude != nil
}

func (c *Charity) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

func (v *Volunteer) HasLocation() bool {
	return v.Latitude != nil && v.Longitude != nil
}
