package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/sghss/sghss-api/internal/auth"
	"github.com/sghss/sghss-api/internal/handlers"
	"github.com/sghss/sghss-api/internal/middleware"
	"github.com/sghss/sghss-api/internal/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Patients     *handlers.PatientHandler
	Appointments *handlers.AppointmentHandler
	Records      *handlers.MedicalRecordHandler
}

// Limits are per-IP request budgets per minute.
type Limits struct {
	API  int
	Auth int
}

var DefaultLimits = Limits{API: 60, Auth: 10}

func rateLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   true,
				"message": "too many requests",
			})
		},
	})
}

func Setup(app *fiber.App, tokens *auth.TokenManager, h Handlers, limits Limits) {
	guard := auth.NewGuard(tokens)
	jwt := middleware.JWTProtected(tokens)
	staff := middleware.RequireRoles(guard, auth.AnyRole())
	clinical := middleware.RequireRoles(guard, auth.Roles(models.RoleAdmin, models.RoleClinician))
	adminOnly := middleware.RequireRoles(guard, auth.Roles(models.RoleAdmin))

	api := app.Group("/api", rateLimit(limits.API))

	api.Get("/health", h.Health.Check)
	api.Get("/status", h.Health.Status)

	// Auth: public endpoints share a stricter limit
	authGroup := api.Group("/auth", rateLimit(limits.Auth))
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/logout", jwt, h.Auth.Logout)
	authGroup.Get("/profile", jwt, h.Auth.Profile)
	authGroup.Put("/change-password", jwt, h.Auth.ChangePassword)

	api.Get("/providers", jwt, staff, h.Auth.ListProviders)

	patients := api.Group("/pacientes", jwt, staff)
	patients.Post("/", h.Patients.Create)
	patients.Get("/", h.Patients.List)
	patients.Get("/:id", h.Patients.Get)
	patients.Put("/:id", h.Patients.Update)
	patients.Delete("/:id", h.Patients.Deactivate)
	patients.Put("/:id/reativar", adminOnly, h.Patients.Reactivate)

	appointments := api.Group("/consultas", jwt, staff)
	appointments.Post("/", h.Appointments.Create)
	appointments.Get("/", h.Appointments.List)
	appointments.Get("/:id", h.Appointments.Get)
	appointments.Put("/:id/status", h.Appointments.UpdateStatus)
	appointments.Post("/:id/prontuario", clinical, h.Records.Create)
	appointments.Get("/:id/prontuario", clinical, h.Records.GetByAppointment)

	records := api.Group("/prontuarios", jwt, clinical)
	records.Get("/:id", h.Records.Get)
	records.Put("/:id", h.Records.Update)
}
