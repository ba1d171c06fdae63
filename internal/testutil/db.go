package testutil

import (
	migration "Food-Rescue-Coordinator/cmd/database/migrate"
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory sqlite database with every entity
// migrated. The pool is pinned to one connection: the in-memory database lives
// on it, and concurrent transactions queue behind each other.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.SetLogger(zap.NewNop())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := migration.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Float(v float64) *float64 {
	return &v
}

func Int(v int) *int {
	return &v
}

func Principal(u *entities.User) domain.Principal {
	return domain.Principal{UserID: u.ID.String(), Role: u.Role}
}

func CreateUser(t *testing.T, db *gorm.DB, role string) *entities.User {
	t.Helper()
	id := uuid.New()
	user := &entities.User{
		ID:    id,
		Name:  role + "-" + id.String()[:8],
		Email: id.String() + "@example.org",
		Role:  role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateOrganization creates a donor user and its organization at lat/lng.
func CreateOrganization(t *testing.T, db *gorm.DB, lat, lng *float64) (*entities.User, *entities.Organization) {
	t.Helper()
	user := CreateUser(t, db, domain.RoleDonor)
	org := &entities.Organization{
		UserID:    user.ID,
		Name:      "Warung " + user.ID.String()[:4],
		Address:   "Jl. Sudirman",
		Latitude:  lat,
		Longitude: lng,
		Verified:  true,
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("create organization: %v", err)
	}
	return user, org
}

func CreateCharity(t *testing.T, db *gorm.DB, lat, lng *float64, verified bool) (*entities.User, *entities.Charity) {
	t.Helper()
	user := CreateUser(t, db, domain.RoleCharity)
	charity := &entities.Charity{
		UserID:             user.ID,
		Name:               "Panti " + user.ID.String()[:4],
		Address:            "Jl. Thamrin",
		Latitude:           lat,
		Longitude:          lng,
		RegistrationNumber: "REG-" + user.ID.String()[:6],
		Verified:           verified,
	}
	if err := db.Create(charity).Error; err != nil {
		t.Fatalf("create charity: %v", err)
	}
	return user, charity
}

func CreateVolunteer(t *testing.T, db *gorm.DB, lat, lng *float64, available bool, rating float64) (*entities.User, *entities.Volunteer) {
	t.Helper()
	user := CreateUser(t, db, domain.RoleVolunteer)
	volunteer := &entities.Volunteer{
		UserID:    user.ID,
		Latitude:  lat,
		Longitude: lng,
		Available: available,
		Rating:    rating,
	}
	if err := db.Create(volunteer).Error; err != nil {
		t.Fatalf("create volunteer: %v", err)
	}
	return user, volunteer
}

// CreateDonation inserts a donation directly with the given status.
func CreateDonation(t *testing.T, db *gorm.DB, org *entities.Organization, quantity float64, status string, expiry time.Time) *entities.Donation {
	t.Helper()
	start := time.Now().UTC().Add(-time.Hour)
	donation := &entities.Donation{
		OrganizationID:    org.ID,
		FoodType:          domain.FoodTypeProduce,
		Quantity:          quantity,
		Description:       "surplus vegetables",
		Expiry:            expiry.UTC(),
		PickupWindowStart: start,
		PickupWindowEnd:   start.Add(2 * time.Hour),
		Status:            status,
	}
	if err := db.Create(donation).Error; err != nil {
		t.Fatalf("create donation: %v", err)
	}
	return donation
}

func Reload[T any](t *testing.T, db *gorm.DB, id uuid.UUID) *T {
	t.Helper()
	var out T
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	return &out
}
