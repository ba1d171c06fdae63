package config

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/testutil"
	"Food-Rescue-Coordinator/internal/utils/storage"
	"Food-Rescue-Coordinator/pkg/jwt"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
	jwt jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	services, err := NewServices(db, storage.NewAwsS3WithClient(nil, "", ""))
	require.NoError(t, err)

	jwtService := jwt.NewJWTServiceWithSecret("test-secret", "FOOD-RESCUE")
	app := fiber.New()
	RegisterRoutes(app, services, jwtService, 5*time.Second)
	return &testServer{t: t, app: app, db: db, jwt: jwtService}
}

func (s *testServer) token(u *entities.User) string {
	s.t.Helper()
	token, err := s.jwt.GenerateTokenUser(u.ID.String(), u.Role, time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path string, as *entities.User, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if as != nil {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token(as))
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 {
		require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/users/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a valid token for a principal with no stored user
	ghost := &entities.User{Role: domain.RoleAdmin}
	code, _ = s.do(http.MethodGet, "/api/v1/users/me", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	volunteer := testutil.CreateUser(t, s.db, domain.RoleVolunteer)
	code, env = s.do(http.MethodGet, "/api/v1/users/me", volunteer, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	me := decode[entities.User](t, env.Data)
	assert.Equal(t, volunteer.ID, me.ID)
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	s := newTestServer(t)
	donor := testutil.CreateUser(t, s.db, domain.RoleDonor)

	code, _ := s.do(http.MethodGet, "/api/v1/donations/pending", donor, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, "/api/v1/donations/match", donor, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users", donor, domain.CreateUserRequest{
		Name: "Sari", Email: "sari@example.org", Role: domain.RoleAdmin,
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCreateDonationErrors(t *testing.T) {
	s := newTestServer(t)
	owner, org := testutil.CreateOrganization(t, s.db, nil, nil)
	other, _ := testutil.CreateOrganization(t, s.db, nil, nil)
	start := time.Now().UTC().Add(time.Hour)

	req := domain.CreateDonationRequest{
		OrganizationID:    org.ID.String(),
		FoodType:          domain.FoodTypeBakery,
		Quantity:          4,
		Expiry:            start.Add(6 * time.Hour),
		PickupWindowStart: start,
		PickupWindowEnd:   start.Add(2 * time.Hour),
	}

	code, _ := s.do(http.MethodPost, "/api/v1/donations", other, req)
	assert.Equal(t, http.StatusForbidden, code)

	bad := req
	bad.Quantity = 0
	code, _ = s.do(http.MethodPost, "/api/v1/donations", owner, bad)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(http.MethodPost, "/api/v1/donations", owner, req)
	require.Equal(t, http.StatusCreated, code, env.Error)
	created := decode[domain.Donation](t, env.Data)
	assert.Equal(t, domain.DonationStatusPending, created.Status)

	code, _ = s.do(http.MethodGet, "/api/v1/donations/"+created.ID, other, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/v1/donations/0b3c5d7e-1f2a-4b6c-8d9e-0f1a2b3c4d5e", owner, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDonationLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, domain.RoleAdmin)
	owner, org := testutil.CreateOrganization(t, s.db, testutil.Float(-6.2), testutil.Float(106.8))
	charityUser, _ := testutil.CreateCharity(t, s.db, testutil.Float(-6.19), testutil.Float(106.8), true)
	volunteerUser, vol := testutil.CreateVolunteer(t, s.db, testutil.Float(-6.21), testutil.Float(106.8), true, 5)

	start := time.Now().UTC().Add(-time.Hour)
	code, env := s.do(http.MethodPost, "/api/v1/donations", owner, domain.CreateDonationRequest{
		OrganizationID:    org.ID.String(),
		FoodType:          domain.FoodTypePreparedMeals,
		Quantity:          10,
		Expiry:            time.Now().UTC().Add(6 * time.Hour),
		PickupWindowStart: start,
		PickupWindowEnd:   start.Add(3 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	donation := decode[domain.Donation](t, env.Data)

	code, env = s.do(http.MethodGet, "/api/v1/donations/pending", admin, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Len(t, decode[[]domain.Donation](t, env.Data), 1)

	code, env = s.do(http.MethodPost, "/api/v1/donations/"+donation.ID+"/match", admin, nil)
	require.Equal(t, http.StatusCreated, code, env.Error)
	pickup := decode[domain.Pickup](t, env.Data)
	assert.Equal(t, vol.ID.String(), pickup.VolunteerID)

	// matching twice is an invalid transition
	code, _ = s.do(http.MethodPost, "/api/v1/donations/"+donation.ID+"/match", admin, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/v1/pickups/"+pickup.ID+"/pickup", charityUser, domain.ConfirmPickupRequest{})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPost, "/api/v1/pickups/"+pickup.ID+"/pickup", volunteerUser, domain.ConfirmPickupRequest{Notes: "loaded"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, _ = s.do(http.MethodPost, "/api/v1/donations/"+donation.ID+"/cancel", owner, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/v1/pickups/"+pickup.ID+"/delivery", charityUser, domain.ConfirmDeliveryRequest{Rating: testutil.Int(9)})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/v1/pickups/"+pickup.ID+"/delivery", charityUser, domain.ConfirmDeliveryRequest{Rating: testutil.Int(4)})
	require.Equal(t, http.StatusOK, code, env.Error)
	delivered := decode[domain.Pickup](t, env.Data)
	assert.NotNil(t, delivered.DeliveredAt)

	code, env = s.do(http.MethodGet, "/api/v1/pickups", volunteerUser, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Len(t, decode[[]domain.Pickup](t, env.Data), 1)

	code, env = s.do(http.MethodGet, "/api/v1/impact", admin, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	impact := decode[struct {
		Summary domain.ImpactSummary `json:"summary"`
	}](t, env.Data)
	assert.Equal(t, int64(25), impact.Summary.MealsSaved)
	assert.InDelta(t, 10.0, impact.Summary.KgFoodSaved, 1e-9)

	code, env = s.do(http.MethodGet, "/api/v1/donations/"+donation.ID, owner, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, domain.DonationStatusDelivered, decode[domain.Donation](t, env.Data).Status)
}

func TestProofUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	volunteer := testutil.CreateUser(t, s.db, domain.RoleVolunteer)

	code, _ := s.do(http.MethodPost, "/api/v1/pickups/0b3c5d7e-1f2a-4b6c-8d9e-0f1a2b3c4d5e/proof", volunteer, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
