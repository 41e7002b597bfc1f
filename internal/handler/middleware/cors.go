package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/samedayramps/template-tiny-church/internal/config"
)

// CORSMiddleware configures and returns CORS middleware. Credentialed
// requests are required because authentication rides on cookies.
func CORSMiddleware(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:     "Content-Type",
		AllowCredentials: true,
	})
}
