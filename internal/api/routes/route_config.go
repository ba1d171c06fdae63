package routes

import (
	"Food-Rescue-Coordinator/internal/api/handlers"
	"Food-Rescue-Coordinator/internal/middleware"
	"Food-Rescue-Coordinator/pkg/jwt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App             *fiber.App
	UserHandler     handlers.UserHandler
	ProfileHandler  handlers.ProfileHandler
	DonationHandler handlers.DonationHandler
	MatchingHandler handlers.MatchingHandler
	PickupHandler   handlers.PickupHandler
	ImpactHandler   handlers.ImpactHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
	RequestTimeout  time.Duration
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.App.Use(c.Middleware.TimeoutMiddleware(c.RequestTimeout))
	c.GuestRoute()
	c.User()
	c.Profiles()
	c.Donations()
	c.Pickups()
	c.Impact()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users", c.Middleware.AuthMiddleware(c.JWTService))
	{
		user.Get("/me", c.UserHandler.Me)
		user.Post("", c.Middleware.AdminOnly(), c.UserHandler.CreateUser)
	}
}

func (c *Config) Profiles() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)

	organizations := c.App.Group("/api/v1/organizations", auth)
	{
		organizations.Post("", c.ProfileHandler.CreateOrganization)
		organizations.Get("/:id", c.ProfileHandler.GetOrganization)
		organizations.Put("/:id", c.ProfileHandler.UpdateOrganization)
		organizations.Patch("/:id/verify", c.ProfileHandler.VerifyOrganization)
		organizations.Get("/:id/donations", c.DonationHandler.GetOrganizationDonations)
	}

	charities := c.App.Group("/api/v1/charities", auth)
	{
		charities.Post("", c.ProfileHandler.CreateCharity)
		charities.Get("/:id", c.ProfileHandler.GetCharity)
		charities.Put("/:id", c.ProfileHandler.UpdateCharity)
		charities.Patch("/:id/verify", c.ProfileHandler.VerifyCharity)
	}

	volunteers := c.App.Group("/api/v1/volunteers", auth)
	{
		volunteers.Post("", c.ProfileHandler.CreateVolunteer)
		volunteers.Get("/:id", c.ProfileHandler.GetVolunteer)
		volunteers.Patch("/:id/location", c.ProfileHandler.UpdateVolunteerLocation)
	}
}

func (c *Config) Donations() {
	donations := c.App.Group("/api/v1/donations", c.Middleware.AuthMiddleware(c.JWTService))
	{
		donations.Post("", c.DonationHandler.CreateDonation)
		donations.Get("/pending", c.Middleware.AdminOnly(), c.DonationHandler.GetPendingDonations)
		donations.Post("/match", c.Middleware.AdminOnly(), c.MatchingHandler.MatchPending)
		donations.Get("/:id", c.DonationHandler.GetDonationByID)
		donations.Post("/:id/cancel", c.DonationHandler.CancelDonation)
		donations.Post("/:id/match", c.Middleware.AdminOnly(), c.MatchingHandler.MatchDonation)
	}
}

func (c *Config) Pickups() {
	pickups := c.App.Group("/api/v1/pickups", c.Middleware.AuthMiddleware(c.JWTService))
	{
		pickups.Get("", c.PickupHandler.GetMyPickups)
		pickups.Get("/:id", c.PickupHandler.GetPickupByID)
		pickups.Post("/:id/pickup", c.PickupHandler.ConfirmPickup)
		pickups.Post("/:id/delivery", c.PickupHandler.ConfirmDelivery)
		pickups.Post("/:id/cancel", c.PickupHandler.CancelAssignment)
		pickups.Post("/:id/proof", c.PickupHandler.UploadProof)
	}
}

func (c *Config) Impact() {
	impact := c.App.Group("/api/v1/impact", c.Middleware.AuthMiddleware(c.JWTService))
	impact.Get("", c.ImpactHandler.GetMetrics)
}
