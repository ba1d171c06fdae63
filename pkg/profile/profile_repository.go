package profile

import (
	"Food-Rescue-Coordinator/entities"
	"context"

	"gorm.io/gorm"
)

type (
	ProfileRepository interface {
		WithTx(tx *gorm.DB) ProfileRepository

		CreateOrganization(ctx context.Context, org *entities.Organization) error
		GetOrganizationByID(ctx context.Context, id string) (*entities.Organization, error)
		GetOrganizationByUserID(ctx context.Context, userID string) (*entities.Organization, error)
		UpdateOrganization(ctx context.Context, id string, updates map[string]interface{}) error

		CreateCharity(ctx context.Context, charity *entities.Charity) error
		GetCharityByID(ctx context.Context, id string) (*entities.Charity, error)
		GetCharityByUserID(ctx context.Context, userID string) (*entities.Charity, error)
		UpdateCharity(ctx context.Context, id string, updates map[string]interface{}) error
		ListVerifiedCharities(ctx context.Context) ([]*entities.Charity, error)

		CreateVolunteer(ctx context.Context, volunteer *entities.Volunteer) error
		GetVolunteerByID(ctx context.Context, id string) (*entities.Volunteer, error)
		GetVolunteerByUserID(ctx context.Context, userID string) (*entities.Volunteer, error)
		UpdateVolunteer(ctx context.Context, id string, updates map[string]interface{}) error
		ListAvailableVolunteers(ctx context.Context) ([]*entities.Volunteer, error)
		// ClaimVolunteer flips available to false only if it is still true.
		ClaimVolunteer(ctx context.Context, id string) (bool, error)
		// ReleaseVolunteer flips available back to true only if it is false.
		ReleaseVolunteer(ctx context.Context, id string) (bool, error)
		CompleteVolunteerDelivery(ctx context.Context, id string, rating *int) (bool, error)
	}

	profileRepository struct {
		db *gorm.DB
	}
)

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) WithTx(tx *gorm.DB) ProfileRepository {
	return &profileRepository{db: tx}
}

func (r *profileRepository) CreateOrganization(ctx context.Context, org *entities.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *profileRepository) GetOrganizationByID(ctx context.Context, id string) (*entities.Organization, error) {
	var org entities.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *profileRepository) GetOrganizationByUserID(ctx context.Context, userID string) (*entities.Organization, error) {
	var org entities.Organization
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *profileRepository) UpdateOrganization(ctx context.Context, id string, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &entities.Organization{}, id, updates)
}

func (r *profileRepository) CreateCharity(ctx context.Context, charity *entities.Charity) error {
	return r.db.WithContext(ctx).Create(charity).Error
}

func (r *profileRepository) GetCharityByID(ctx context.Context, id string) (*entities.Charity, error) {
	var charity entities.Charity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&charity).Error; err != nil {
		return nil, err
	}
	return &charity, nil
}

func (r *profileRepository) GetCharityByUserID(ctx context.Context, userID string) (*entities.Charity, error) {
	var charity entities.Charity
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&charity).Error; err != nil {
		return nil, err
	}
	return &charity, nil
}

func (r *profileRepository) UpdateCharity(ctx context.Context, id string, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &entities.Charity{}, id, updates)
}

func (r *profileRepository) ListVerifiedCharities(ctx context.Context) ([]*entities.Charity, error) {
	var charities []*entities.Charity
	if err := r.db.WithContext(ctx).
		Where("verified = ?", true).
		Order("id ASC").
		Find(&charities).Error; err != nil {
		return nil, err
	}
	return charities, nil
}

func (r *profileRepository) CreateVolunteer(ctx context.Context, volunteer *entities.Volunteer) error {
	return r.db.WithContext(ctx).Create(volunteer).Error
}

func (r *profileRepository) GetVolunteerByID(ctx context.Context, id string) (*entities.Volunteer, error) {
	var volunteer entities.Volunteer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&volunteer).Error; err != nil {
		return nil, err
	}
	return &volunteer, nil
}

func (r *profileRepository) GetVolunteerByUserID(ctx context.Context, userID string) (*entities.Volunteer, error) {
	var volunteer entities.Volunteer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&volunteer).Error; err != nil {
		return nil, err
	}
	return &volunteer, nil
}

func (r *profileRepository) UpdateVolunteer(ctx context.Context, id string, updates map[string]interface{}) error {
	return updateByID(ctx, r.db, &entities.Volunteer{}, id, updates)
}

func (r *profileRepository) ListAvailableVolunteers(ctx context.Context) ([]*entities.Volunteer, error) {
	var volunteers []*entities.Volunteer
	if err := r.db.WithContext(ctx).
		Where("available = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", true).
		Order("id ASC").
		Find(&volunteers).Error; err != nil {
		return nil, err
	}
	return volunteers, nil
}

func (r *profileRepository) ClaimVolunteer(ctx context.Context, id string) (bool, error) {
	return setAvailability(ctx, r.db, id, true, false)
}

func (r *profileRepository) ReleaseVolunteer(ctx context.Context, id string) (bool, error) {
	return setAvailability(ctx, r.db, id, false, true)
}

// CompleteVolunteerDelivery increments total_pickups, folds rating into the
// running mean and makes the volunteer available again.
func (r *profileRepository) CompleteVolunteerDelivery(ctx context.Context, id string, rating *int) (bool, error) {
	updates := map[string]interface{}{
		"available":     true,
		"total_pickups": gorm.Expr("total_pickups + 1"),
		"version":       gorm.Expr("version + 1"),
	}
	if rating != nil {
		updates["rating"] = gorm.Expr("(rating * rating_count + ?) / (rating_count + 1)", float64(*rating))
		updates["rating_count"] = gorm.Expr("rating_count + 1")
	}

	res := r.db.WithContext(ctx).
		Model(&entities.Volunteer{}).
		Where("id = ? AND available = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func setAvailability(ctx context.Context, db *gorm.DB, id string, from, to bool) (bool, error) {
	res := db.WithContext(ctx).
		Model(&entities.Volunteer{}).
		Where("id = ? AND available = ?", id, from).
		Updates(map[string]interface{}{
			"available": to,
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func updateByID(ctx context.Context, db *gorm.DB, model interface{}, id string, updates map[string]interface{}) error {
	res := db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
