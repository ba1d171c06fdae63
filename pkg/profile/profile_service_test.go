package profile

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/testutil"
	"Food-Rescue-Coordinator/pkg/policy"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (ProfileService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	enforcer, err := policy.NewEnforcer()
	require.NoError(t, err)
	return NewProfileService(NewProfileRepository(db), enforcer), db
}

func orgRequest(name string) domain.OrganizationRequest {
	return domain.OrganizationRequest{
		Name:      name,
		Address:   "Jl. Merdeka 1",
		Latitude:  testutil.Float(-6.2),
		Longitude: testutil.Float(106.8),
	}
}

func TestCreateOrganization(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	donor := testutil.Principal(testutil.CreateUser(t, db, domain.RoleDonor))

	org, err := svc.CreateOrganization(ctx, donor, orgRequest("Toko Roti"))
	require.NoError(t, err)
	assert.Equal(t, donor.UserID, org.UserID.String())
	assert.False(t, org.Verified)
	assert.True(t, org.HasLocation())

	_, err = svc.CreateOrganization(ctx, donor, orgRequest("Second"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateProfileRoleMismatch(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	volunteer := testutil.Principal(testutil.CreateUser(t, db, domain.RoleVolunteer))

	_, err := svc.CreateOrganization(ctx, volunteer, orgRequest("Nope"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.CreateCharity(ctx, volunteer, orgRequest("Nope"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateOrganizationValidation(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	donor := testutil.Principal(testutil.CreateUser(t, db, domain.RoleDonor))

	req := orgRequest("")
	_, err := svc.CreateOrganization(ctx, donor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	req = orgRequest("Half located")
	req.Longitude = nil
	_, err = svc.CreateOrganization(ctx, donor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	req = orgRequest("Off the map")
	req.Latitude = testutil.Float(123)
	_, err = svc.CreateOrganization(ctx, donor, req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestUpdateOrganizationOwnership(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ownerUser, org := testutil.CreateOrganization(t, db, testutil.Float(-6.2), testutil.Float(106.8))
	other := testutil.Principal(testutil.CreateUser(t, db, domain.RoleDonor))
	admin := testutil.Principal(testutil.CreateUser(t, db, domain.RoleAdmin))

	_, err := svc.UpdateOrganization(ctx, other, org.ID.String(), orgRequest("Hijacked"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.UpdateOrganization(ctx, testutil.Principal(ownerUser), org.ID.String(), orgRequest("Renamed"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	updated, err = svc.UpdateOrganization(ctx, admin, org.ID.String(), orgRequest("By admin"))
	require.NoError(t, err)
	assert.Equal(t, "By admin", updated.Name)

	got, err := svc.GetOrganization(ctx, other, org.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "By admin", got.Name)
}

func TestSetVerifiedRequiresAdmin(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	charityUser, charity := testutil.CreateCharity(t, db, testutil.Float(-6.2), testutil.Float(106.8), false)
	admin := testutil.Principal(testutil.CreateUser(t, db, domain.RoleAdmin))

	_, err := svc.SetCharityVerified(ctx, testutil.Principal(charityUser), charity.ID.String(), true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	verified, err := svc.SetCharityVerified(ctx, admin, charity.ID.String(), true)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	_, org := testutil.CreateOrganization(t, db, nil, nil)
	unverified, err := svc.SetOrganizationVerified(ctx, admin, org.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, unverified.Verified)
}

func TestCreateVolunteerDefaults(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.Principal(testutil.CreateUser(t, db, domain.RoleVolunteer))

	volunteer, err := svc.CreateVolunteer(ctx, user, domain.VolunteerRequest{})
	require.NoError(t, err)
	assert.True(t, volunteer.Available)
	assert.Equal(t, 5.0, volunteer.Rating)
	assert.Zero(t, volunteer.TotalPickups)
	assert.False(t, volunteer.HasLocation())

	_, err = svc.CreateVolunteer(ctx, user, domain.VolunteerRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVolunteerRatingDefaultsOnDirectInsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	user := testutil.CreateUser(t, db, domain.RoleVolunteer)

	v := &entities.Volunteer{UserID: user.ID, Available: true}
	require.NoError(t, repo.CreateVolunteer(context.Background(), v))

	stored := testutil.Reload[entities.Volunteer](t, db, v.ID)
	assert.Equal(t, 5.0, stored.Rating)
	assert.Zero(t, stored.RatingCount)
}

func TestUpdateVolunteerLocationKeepsAvailability(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user, volunteer := testutil.CreateVolunteer(t, db, nil, nil, false, 4.5)
	stranger := testutil.Principal(testutil.CreateUser(t, db, domain.RoleVolunteer))

	req := domain.VolunteerRequest{Latitude: testutil.Float(-6.3), Longitude: testutil.Float(106.9)}
	_, err := svc.UpdateVolunteerLocation(ctx, stranger, volunteer.ID.String(), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.UpdateVolunteerLocation(ctx, testutil.Principal(user), volunteer.ID.String(), req)
	require.NoError(t, err)
	assert.InDelta(t, -6.3, *updated.Latitude, 1e-9)
	assert.False(t, updated.Available)

	reloaded := testutil.Reload[entities.Volunteer](t, db, volunteer.ID)
	assert.False(t, reloaded.Available)
}

func TestGetProfileNotFound(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	actor := testutil.Principal(testutil.CreateUser(t, db, domain.RoleDonor))

	_, err := svc.GetCharity(ctx, actor, "bad-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetVolunteer(ctx, actor, "7b0d8c9e-2f55-4a5a-9d0e-6f4b3d2c1a00")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClaimAndReleaseVolunteer(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	_, volunteer := testutil.CreateVolunteer(t, db, testutil.Float(-6.2), testutil.Float(106.8), true, 5)

	claimed, err := repo.ClaimVolunteer(ctx, volunteer.ID.String())
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimVolunteer(ctx, volunteer.ID.String())
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	released, err := repo.ReleaseVolunteer(ctx, volunteer.ID.String())
	require.NoError(t, err)
	assert.True(t, released)

	reloaded := testutil.Reload[entities.Volunteer](t, db, volunteer.ID)
	assert.True(t, reloaded.Available)
	assert.Equal(t, int64(2), reloaded.Version)
}

func TestCompleteVolunteerDeliveryRunningMean(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	_, volunteer := testutil.CreateVolunteer(t, db, testutil.Float(-6.2), testutil.Float(106.8), false, 5)

	ok, err := repo.CompleteVolunteerDelivery(ctx, volunteer.ID.String(), testutil.Int(4))
	require.NoError(t, err)
	require.True(t, ok)

	reloaded := testutil.Reload[entities.Volunteer](t, db, volunteer.ID)
	assert.True(t, reloaded.Available)
	assert.Equal(t, 1, reloaded.TotalPickups)
	assert.Equal(t, 1, reloaded.RatingCount)
	assert.InDelta(t, 4.0, reloaded.Rating, 1e-9)

	_, err = repo.ClaimVolunteer(ctx, volunteer.ID.String())
	require.NoError(t, err)
	ok, err = repo.CompleteVolunteerDelivery(ctx, volunteer.ID.String(), testutil.Int(5))
	require.NoError(t, err)
	require.True(t, ok)

	reloaded = testutil.Reload[entities.Volunteer](t, db, volunteer.ID)
	assert.Equal(t, 2, reloaded.TotalPickups)
	assert.InDelta(t, 4.5, reloaded.Rating, 1e-9)

	ok, err = repo.CompleteVolunteerDelivery(ctx, volunteer.ID.String(), nil)
	require.NoError(t, err)
	assert.False(t, ok, "already available volunteer cannot complete a delivery")
}
