package donation

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	// PendingCursor is the keyset position after the last donation of a batch.
	PendingCursor struct {
		Expiry time.Time
		ID     string
	}

	DonationRepository interface {
		WithTx(tx *gorm.DB) DonationRepository

		CreateDonation(ctx context.Context, donation *entities.Donation) error
		GetDonationByID(ctx context.Context, id string) (*entities.Donation, error)
		GetOrganizationDonations(ctx context.Context, organizationID string, page, limit int) ([]*entities.Donation, int64, error)
		// GetPendingBatch returns up to limit pending donations expiring after now,
		// ordered by (expiry, id) and strictly after cursor when it is non-nil.
		GetPendingBatch(ctx context.Context, now time.Time, cursor *PendingCursor, limit int) ([]*entities.Donation, error)
		// TransitionStatus moves a donation from one status to another only if it
		// is still in from. It reports whether the row changed.
		TransitionStatus(ctx context.Context, id string, from, to string) (bool, error)
	}

	donationRepository struct {
		db *gorm.DB
	}
)

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) WithTx(tx *gorm.DB) DonationRepository {
	return &donationRepository{db: tx}
}

func (r *donationRepository) CreateDonation(ctx context.Context, donation *entities.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepository) GetDonationByID(ctx context.Context, id string) (*entities.Donation, error) {
	var donation entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("id = ?", id).
		First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) GetOrganizationDonations(ctx context.Context, organizationID string, page, limit int) ([]*entities.Donation, int64, error) {
	var donations []*entities.Donation
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("organization_id = ?", organizationID).
		Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

func (r *donationRepository) GetPendingBatch(ctx context.Context, now time.Time, cursor *PendingCursor, limit int) ([]*entities.Donation, error) {
	var donations []*entities.Donation

	query := r.db.WithContext(ctx).
		Where("status = ? AND expiry > ?", domain.DonationStatusPending, now)
	if cursor != nil {
		query = query.Where("(expiry > ? OR (expiry = ? AND id > ?))", cursor.Expiry, cursor.Expiry, cursor.ID)
	}
	if err := query.
		Order("expiry ASC").
		Order("id ASC").
		Limit(limit).
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) TransitionStatus(ctx context.Context, id string, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":  to,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
