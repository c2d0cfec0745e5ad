package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"

	"github.com/sghss/sghss-api/internal/config"
)

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: false,
	})
}

// SecurityHeaders sets the standard hardening headers. HSTS is only sent in
// production, where the service sits behind TLS.
func SecurityHeaders(cfg *config.Config) fiber.Handler {
	hsts := 0
	if cfg.IsProduction() {
		hsts = 31536000
	}
	return helmet.New(helmet.Config{
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "no-referrer",
		HSTSMaxAge:            hsts,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	})
}
