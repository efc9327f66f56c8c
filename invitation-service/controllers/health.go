package controllers

import (
	"github.com/automate/invitation-server/utils-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
)

type HealthController struct {
	fx.In

	Db *bun.DB
}

func RegisterHealthController(r *utils.Router, c HealthController) {
	r.Get("/health", c.health)
}

func (r *HealthController) health(c *fiber.Ctx) error {
	if err := r.Db.PingContext(c.UserContext()); err != nil {
		log.Warn().Err(err).Msg("Database ping failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
