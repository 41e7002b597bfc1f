package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	db  *sqlx.DB
	rdb *redis.Client
}

func NewHealthHandler(db *sqlx.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"service": "tiny-church",
	})
}

// Ready returns readiness status with live dependency checks
// GET /ready
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	status := fiber.StatusOK
	checks := fiber.Map{
		"database": "ok",
		"cache":    "ok",
	}

	if err := h.db.PingContext(c.Context()); err != nil {
		checks["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}

	if err := h.rdb.Ping(c.Context()).Err(); err != nil {
		checks["cache"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}

	overall := "ready"
	if status != fiber.StatusOK {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": checks,
	})
}
