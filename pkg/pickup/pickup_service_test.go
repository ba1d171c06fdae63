package pickup

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/testutil"
	"Food-Rescue-Coordinator/internal/utils/database"
	"Food-Rescue-Coordinator/internal/utils/storage"
	"Food-Rescue-Coordinator/pkg/donation"
	"Food-Rescue-Coordinator/pkg/impact"
	"Food-Rescue-Coordinator/pkg/policy"
	"Food-Rescue-Coordinator/pkg/profile"
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePutter struct {
	keys []string
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.keys = append(f.keys, *params.Key)
	return &s3.PutObjectOutput{}, nil
}

type assignment struct {
	donor     *entities.User
	volunteer *entities.User
	charity   *entities.User
	donation  *entities.Donation
	pickup    *entities.Pickup
	vol       *entities.Volunteer
}

func newTestService(t *testing.T) (*pickupService, *gorm.DB, *fakePutter) {
	t.Helper()
	db := testutil.NewTestDB(t)
	enforcer, err := policy.NewEnforcer()
	require.NoError(t, err)

	putter := &fakePutter{}
	impactSvc := impact.NewImpactService(impact.NewImpactRepository(db), enforcer, domain.ImpactFactors{
		MealsPerKg:               2.5,
		CO2PerKg:                 2.5,
		BeneficiariesPerDonation: 1,
	}, time.UTC)

	svc := NewPickupService(
		NewPickupRepository(db),
		donation.NewDonationRepository(db),
		profile.NewProfileRepository(db),
		impactSvc,
		database.NewTransactor(db),
		enforcer,
		storage.NewAwsS3WithClient(putter, "rescue-proofs", "ap-southeast-3"),
	)
	return svc.(*pickupService), db, putter
}

// assign builds the state a successful match leaves behind.
func assign(t *testing.T, db *gorm.DB, quantity float64) *assignment {
	t.Helper()
	donor, org := testutil.CreateOrganization(t, db, testutil.Float(-6.2), testutil.Float(106.8))
	charityUser, charity := testutil.CreateCharity(t, db, testutil.Float(-6.21), testutil.Float(106.81), true)
	volunteerUser, vol := testutil.CreateVolunteer(t, db, testutil.Float(-6.19), testutil.Float(106.8), false, 5)
	d := testutil.CreateDonation(t, db, org, quantity, domain.DonationStatusAssigned, time.Now().Add(4*time.Hour))

	p := &entities.Pickup{
		DonationID:  d.ID,
		VolunteerID: vol.ID,
		CharityID:   charity.ID,
		AssignedAt:  time.Now().UTC(),
		Active:      true,
	}
	require.NoError(t, db.Create(p).Error)
	return &assignment{
		donor:     donor,
		volunteer: volunteerUser,
		charity:   charityUser,
		donation:  d,
		pickup:    p,
		vol:       vol,
	}
}

// assertAvailabilityInvariant checks that a volunteer is unavailable exactly
// while it holds an active, undelivered pickup.
func assertAvailabilityInvariant(t *testing.T, db *gorm.DB) {
	t.Helper()
	var volunteers []entities.Volunteer
	require.NoError(t, db.Find(&volunteers).Error)
	for _, v := range volunteers {
		var busy int64
		require.NoError(t, db.Model(&entities.Pickup{}).
			Joins("JOIN donations ON donations.id = pickups.donation_id").
			Where("pickups.volunteer_id = ? AND pickups.active = ? AND donations.status IN ?",
				v.ID, true, []string{domain.DonationStatusAssigned, domain.DonationStatusPickedUp}).
			Count(&busy).Error)
		assert.Equal(t, busy == 0, v.Available, "volunteer %s", v.ID)
	}
}

func TestConfirmPickupAndDelivery(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)
	pickupID := a.pickup.ID.String()

	p, err := svc.ConfirmPickup(ctx, testutil.Principal(a.volunteer), pickupID, domain.ConfirmPickupRequest{ProofRef: "proofs/pickup/a.jpg"})
	require.NoError(t, err)
	require.NotNil(t, p.PickedUpAt)
	assert.Equal(t, "proofs/pickup/a.jpg", *p.ProofOfPickup)
	assert.Equal(t, domain.DonationStatusPickedUp, p.Donation.Status)
	assertAvailabilityInvariant(t, db)

	p, err = svc.ConfirmDelivery(ctx, testutil.Principal(a.volunteer), pickupID, domain.ConfirmDeliveryRequest{
		ProofRef: "proofs/delivery/a.jpg",
		Rating:   testutil.Int(4),
	})
	require.NoError(t, err)
	require.NotNil(t, p.DeliveredAt)
	assert.False(t, p.DeliveredAt.Before(*p.PickedUpAt))
	assert.Equal(t, 4, *p.Rating)
	assert.Equal(t, domain.DonationStatusDelivered, p.Donation.Status)

	vol := testutil.Reload[entities.Volunteer](t, db, a.vol.ID)
	assert.True(t, vol.Available)
	assert.Equal(t, 1, vol.TotalPickups)
	assert.InDelta(t, 4.0, vol.Rating, 1e-9)

	var metric entities.ImpactMetric
	require.NoError(t, db.Where("date = ?", impact.DateKey(*p.DeliveredAt, time.UTC)).First(&metric).Error)
	assert.InDelta(t, 10.0, metric.KgFoodSaved, 1e-9)
	assert.Equal(t, int64(25), metric.MealsSaved)
	assertAvailabilityInvariant(t, db)
}

func TestConfirmDeliveryTwiceDoesNotDoubleCount(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)
	pickupID := a.pickup.ID.String()
	actor := testutil.Principal(a.volunteer)

	_, err := svc.ConfirmPickup(ctx, actor, pickupID, domain.ConfirmPickupRequest{})
	require.NoError(t, err)
	_, err = svc.ConfirmDelivery(ctx, testutil.Principal(a.charity), pickupID, domain.ConfirmDeliveryRequest{})
	require.NoError(t, err)

	_, err = svc.ConfirmDelivery(ctx, actor, pickupID, domain.ConfirmDeliveryRequest{Rating: testutil.Int(5)})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	var metrics []entities.ImpactMetric
	require.NoError(t, db.Find(&metrics).Error)
	require.Len(t, metrics, 1)
	assert.InDelta(t, 10.0, metrics[0].KgFoodSaved, 1e-9)

	vol := testutil.Reload[entities.Volunteer](t, db, a.vol.ID)
	assert.Equal(t, 1, vol.TotalPickups)
	assert.Equal(t, 5.0, vol.Rating, "no rating given keeps the prior")
}

func TestConfirmPickupByOtherVolunteerIsForbidden(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)
	other, _ := testutil.CreateVolunteer(t, db, testutil.Float(-6.2), testutil.Float(106.8), true, 5)

	_, err := svc.ConfirmPickup(ctx, testutil.Principal(other), a.pickup.ID.String(), domain.ConfirmPickupRequest{})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ConfirmPickup(ctx, testutil.Principal(a.charity), a.pickup.ID.String(), domain.ConfirmPickupRequest{})
	require.ErrorIs(t, err, domain.ErrForbidden, "charities confirm deliveries, not pickups")

	assert.Equal(t, domain.DonationStatusAssigned, testutil.Reload[entities.Donation](t, db, a.donation.ID).Status)
}

func TestConfirmDeliveryByOtherVolunteerIsForbidden(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)
	pickupID := a.pickup.ID.String()
	_, err := svc.ConfirmPickup(ctx, testutil.Principal(a.volunteer), pickupID, domain.ConfirmPickupRequest{})
	require.NoError(t, err)

	other, _ := testutil.CreateVolunteer(t, db, testutil.Float(-6.2), testutil.Float(106.8), true, 5)
	otherCharity, _ := testutil.CreateCharity(t, db, testutil.Float(-6.2), testutil.Float(106.8), true)
	for _, actor := range []*entities.User{other, otherCharity, a.donor} {
		_, err = svc.ConfirmDelivery(ctx, testutil.Principal(actor), pickupID, domain.ConfirmDeliveryRequest{Rating: testutil.Int(1)})
		require.ErrorIs(t, err, domain.ErrForbidden, actor.Role)
	}

	assert.Equal(t, domain.DonationStatusPickedUp, testutil.Reload[entities.Donation](t, db, a.donation.ID).Status)
	vol := testutil.Reload[entities.Volunteer](t, db, a.vol.ID)
	assert.Equal(t, 0, vol.TotalPickups)
	assert.Equal(t, 5.0, vol.Rating)
	var metrics int64
	require.NoError(t, db.Model(&entities.ImpactMetric{}).Count(&metrics).Error)
	assert.Zero(t, metrics)
}

func TestConfirmDeliveryBeforePickupIsInvalid(t *testing.T) {
	svc, db, _ := newTestService(t)
	a := assign(t, db, 10)

	_, err := svc.ConfirmDelivery(context.Background(), testutil.Principal(a.volunteer), a.pickup.ID.String(), domain.ConfirmDeliveryRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestConfirmDeliveryRejectsBadRating(t *testing.T) {
	svc, db, _ := newTestService(t)
	a := assign(t, db, 10)

	_, err := svc.ConfirmDelivery(context.Background(), testutil.Principal(a.volunteer), a.pickup.ID.String(), domain.ConfirmDeliveryRequest{Rating: testutil.Int(6)})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCancelAssignment(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)

	stranger := testutil.CreateUser(t, db, domain.RoleCharity)
	_, err := svc.CancelAssignment(ctx, testutil.Principal(stranger), a.pickup.ID.String())
	require.ErrorIs(t, err, domain.ErrForbidden)

	p, err := svc.CancelAssignment(ctx, testutil.Principal(a.charity), a.pickup.ID.String())
	require.NoError(t, err)
	assert.False(t, p.Active)
	assert.NotNil(t, p.CancelledAt)
	assert.Equal(t, domain.DonationStatusPending, p.Donation.Status)
	assert.True(t, testutil.Reload[entities.Volunteer](t, db, a.vol.ID).Available)
	assertAvailabilityInvariant(t, db)

	_, err = svc.CancelAssignment(ctx, testutil.Principal(a.volunteer), a.pickup.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelAssignmentAfterPickupIsDisallowed(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)

	_, err := svc.ConfirmPickup(ctx, testutil.Principal(a.volunteer), a.pickup.ID.String(), domain.ConfirmPickupRequest{})
	require.NoError(t, err)

	admin := testutil.CreateUser(t, db, domain.RoleAdmin)
	_, err = svc.CancelAssignment(ctx, testutil.Principal(admin), a.pickup.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.DonationStatusPickedUp, testutil.Reload[entities.Donation](t, db, a.donation.ID).Status)
	assertAvailabilityInvariant(t, db)
}

func TestGetPickupAndListMine(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)
	assign(t, db, 4)

	for _, user := range []*entities.User{a.donor, a.volunteer, a.charity} {
		got, err := svc.GetPickup(ctx, testutil.Principal(user), a.pickup.ID.String())
		require.NoError(t, err, user.Role)
		assert.Equal(t, a.pickup.ID, got.ID)

		mine, err := svc.ListMyPickups(ctx, testutil.Principal(user))
		require.NoError(t, err, user.Role)
		require.Len(t, mine, 1, user.Role)
		assert.Equal(t, a.pickup.ID, mine[0].ID)
	}

	outsider := testutil.CreateUser(t, db, domain.RoleVolunteer)
	_, err := svc.GetPickup(ctx, testutil.Principal(outsider), a.pickup.ID.String())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := testutil.CreateUser(t, db, domain.RoleAdmin)
	all, err := svc.ListMyPickups(ctx, testutil.Principal(admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReleaseAssignmentForCancelledDonation(t *testing.T) {
	_, db, _ := newTestService(t)
	ctx := context.Background()
	a := assign(t, db, 10)
	releaser := NewAssignmentReleaser(NewPickupRepository(db), profile.NewProfileRepository(db))

	err := db.Transaction(func(tx *gorm.DB) error {
		return releaser.ReleaseAssignment(ctx, tx, a.donation.ID.String(), time.Now())
	})
	require.NoError(t, err)
	assert.False(t, testutil.Reload[entities.Pickup](t, db, a.pickup.ID).Active)
	assert.True(t, testutil.Reload[entities.Volunteer](t, db, a.vol.ID).Available)

	err = db.Transaction(func(tx *gorm.DB) error {
		return releaser.ReleaseAssignment(ctx, tx, a.donation.ID.String(), time.Now())
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUploadProof(t *testing.T) {
	svc, db, putter := newTestService(t)
	a := assign(t, db, 10)

	res, err := svc.UploadProof(context.Background(), testutil.Principal(a.volunteer), domain.UploadProofRequest{
		PickupID: a.pickup.ID.String(),
		Kind:     ProofKindPickup,
		Image:    fileHeader(t, "crate.jpg"),
	})
	require.NoError(t, err)
	require.Len(t, putter.keys, 1)
	assert.Equal(t, putter.keys[0], res.ProofRef)
	assert.Contains(t, res.ProofRef, "proofs/pickup/")
	assert.Contains(t, res.URL, "rescue-proofs.s3.ap-southeast-3.amazonaws.com")

	_, err = svc.UploadProof(context.Background(), testutil.Principal(a.charity), domain.UploadProofRequest{
		PickupID: a.pickup.ID.String(),
		Kind:     ProofKindPickup,
		Image:    fileHeader(t, "crate.jpg"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func fileHeader(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write([]byte("\xff\xd8\xff\xe0 fake jpeg"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}
