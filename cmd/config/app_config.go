package config

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/api/handlers"
	"Food-Rescue-Coordinator/internal/api/routes"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/internal/utils"
	"Food-Rescue-Coordinator/internal/utils/database"
	"Food-Rescue-Coordinator/internal/utils/storage"
	"Food-Rescue-Coordinator/pkg/donation"
	"Food-Rescue-Coordinator/pkg/impact"
	"Food-Rescue-Coordinator/pkg/jwt"
	"Food-Rescue-Coordinator/pkg/matching"
	"Food-Rescue-Coordinator/pkg/pickup"
	"Food-Rescue-Coordinator/pkg/policy"
	"Food-Rescue-Coordinator/pkg/profile"
	"Food-Rescue-Coordinator/pkg/user"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

// Services holds every component of the coordinator, wired against one database.
type Services struct {
	User     user.UserService
	Profile  profile.ProfileService
	Donation donation.DonationService
	Pickup   pickup.PickupService
	Matching matching.MatchingService
	Impact   impact.ImpactService
}

func NewServices(db *gorm.DB, s3 storage.AwsS3) (*Services, error) {
	enforcer, err := policy.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("access policy: %w", err)
	}
	transactor := database.NewTransactor(db)

	// Repository
	userRepository := user.NewUserRepository(db)
	profileRepository := profile.NewProfileRepository(db)
	donationRepository := donation.NewDonationRepository(db)
	pickupRepository := pickup.NewPickupRepository(db)
	impactRepository := impact.NewImpactRepository(db)

	// Service
	impactService := impact.NewImpactService(impactRepository, enforcer, domain.ImpactFactors{
		MealsPerKg:               utils.GetFloatConfig("MEALS_PER_KG"),
		CO2PerKg:                 utils.GetFloatConfig("CO2_PER_KG"),
		BeneficiariesPerDonation: utils.GetIntConfig("BENEFICIARIES_PER_DONATION"),
	}, utils.GetLocation())
	releaser := pickup.NewAssignmentReleaser(pickupRepository, profileRepository)
	donationService := donation.NewDonationService(donationRepository, profileRepository, releaser, transactor, enforcer)
	pickupService := pickup.NewPickupService(
		pickupRepository,
		donationRepository,
		profileRepository,
		impactService,
		transactor,
		enforcer,
		s3,
	)
	matchingService, err := matching.NewMatchingService(
		donationService,
		donationRepository,
		profileRepository,
		pickupRepository,
		transactor,
		enforcer,
		matching.OptionsFromConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("matching options: %w", err)
	}

	return &Services{
		User:     user.NewUserService(userRepository),
		Profile:  profile.NewProfileService(profileRepository, enforcer),
		Donation: donationService,
		Pickup:   pickupService,
		Matching: matchingService,
		Impact:   impactService,
	}, nil
}

// RegisterRoutes mounts the HTTP surface of services on app.
func RegisterRoutes(app *fiber.App, services *Services, jwtService jwt.JWTService, timeout time.Duration) {
	utils.InitValidator()
	validator := utils.Validate

	routesConfig := routes.Config{
		App:             app,
		UserHandler:     handlers.NewUserHandler(services.User, validator),
		ProfileHandler:  handlers.NewProfileHandler(services.Profile, validator),
		DonationHandler: handlers.NewDonationHandler(services.Donation, validator),
		MatchingHandler: handlers.NewMatchingHandler(services.Matching),
		PickupHandler:   handlers.NewPickupHandler(services.Pickup, validator),
		ImpactHandler:   handlers.NewImpactHandler(services.Impact),
		Middleware:      middleware.NewMiddleware(services.User),
		JWTService:      jwtService,
		RequestTimeout:  timeout,
	}
	routesConfig.Setup()
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: utils.GetConfig("APP_ENV") != "production",
		BodyLimit:         10 * 1024 * 1024,
	})

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   utils.GetConfig("TIMEZONE"),
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	services, err := NewServices(db, storage.NewAwsS3())
	if err != nil {
		return nil, err
	}
	RegisterRoutes(app, services, jwt.NewJWTService(), utils.GetDurationConfig("REQUEST_TIMEOUT"))
	return app, nil
}
