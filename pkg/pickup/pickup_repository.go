package pickup

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	PickupRepository interface {
		WithTx(tx *gorm.DB) PickupRepository

		CreatePickup(ctx context.Context, pickup *entities.Pickup) error
		// GetPickupByID preloads the volunteer, the charity and the donation
		// with its organization.
		GetPickupByID(ctx context.Context, id string) (*entities.Pickup, error)
		GetActivePickupByDonation(ctx context.Context, donationID string) (*entities.Pickup, error)
		HasActivePickup(ctx context.Context, donationID string) (bool, error)
		GetPickupsForUser(ctx context.Context, principal domain.Principal) ([]*entities.Pickup, error)

		MarkPickedUp(ctx context.Context, id string, at time.Time, proofRef *string, notes string) (bool, error)
		MarkDelivered(ctx context.Context, id string, at time.Time, proofRef *string, rating *int, notes string) (bool, error)
		Deactivate(ctx context.Context, id string, at time.Time) (bool, error)
	}

	pickupRepository struct {
		db *gorm.DB
	}
)

func NewPickupRepository(db *gorm.DB) PickupRepository {
	return &pickupRepository{db: db}
}

func (r *pickupRepository) WithTx(tx *gorm.DB) PickupRepository {
	return &pickupRepository{db: tx}
}

func (r *pickupRepository) CreatePickup(ctx context.Context, pickup *entities.Pickup) error {
	return r.db.WithContext(ctx).Create(pickup).Error
}

func (r *pickupRepository) GetPickupByID(ctx context.Context, id string) (*entities.Pickup, error) {
	var pickup entities.Pickup
	if err := r.db.WithContext(ctx).
		Preload("Volunteer").
		Preload("Charity").
		Preload("Donation.Organization").
		Where("id = ?", id).
		First(&pickup).Error; err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *pickupRepository) GetActivePickupByDonation(ctx context.Context, donationID string) (*entities.Pickup, error) {
	var pickup entities.Pickup
	if err := r.db.WithContext(ctx).
		Where("donation_id = ? AND active = ?", donationID, true).
		First(&pickup).Error; err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *pickupRepository) HasActivePickup(ctx context.Context, donationID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Pickup{}).
		Where("donation_id = ? AND active = ?", donationID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *pickupRepository) GetPickupsForUser(ctx context.Context, principal domain.Principal) ([]*entities.Pickup, error) {
	var pickups []*entities.Pickup

	query := r.db.WithContext(ctx).Preload("Donation")
	switch principal.Role {
	case domain.RoleAdmin:
	case domain.RoleVolunteer:
		query = query.Where("volunteer_id IN (?)",
			r.db.Model(&entities.Volunteer{}).Select("id").Where("user_id = ?", principal.UserID))
	case domain.RoleCharity:
		query = query.Where("charity_id IN (?)",
			r.db.Model(&entities.Charity{}).Select("id").Where("user_id = ?", principal.UserID))
	case domain.RoleDonor:
		orgs := r.db.Model(&entities.Organization{}).Select("id").Where("user_id = ?", principal.UserID)
		query = query.Where("donation_id IN (?)",
			r.db.Model(&entities.Donation{}).Select("id").Where("organization_id IN (?)", orgs))
	default:
		return pickups, nil
	}

	if err := query.Order("assigned_at DESC").Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *pickupRepository) MarkPickedUp(ctx context.Context, id string, at time.Time, proofRef *string, notes string) (bool, error) {
	updates := map[string]interface{}{
		"picked_up_at":    at,
		"proof_of_pickup": proofRef,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	res := r.db.WithContext(ctx).
		Model(&entities.Pickup{}).
		Where("id = ? AND active = ? AND picked_up_at IS NULL", id, true).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pickupRepository) MarkDelivered(ctx context.Context, id string, at time.Time, proofRef *string, rating *int, notes string) (bool, error) {
	updates := map[string]interface{}{
		"delivered_at":      at,
		"proof_of_delivery": proofRef,
		"rating":            rating,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	res := r.db.WithContext(ctx).
		Model(&entities.Pickup{}).
		Where("id = ? AND active = ? AND picked_up_at IS NOT NULL AND delivered_at IS NULL", id, true).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pickupRepository) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Pickup{}).
		Where("id = ? AND active = ? AND picked_up_at IS NULL", id, true).
		Updates(map[string]interface{}{
			"active":       false,
			"cancelled_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
