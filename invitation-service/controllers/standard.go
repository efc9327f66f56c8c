package controllers

import (
	"crypto/rsa"
	"errors"

	"github.com/automate/invitation-server/invitation-service/services"
	"github.com/automate/invitation-server/utils-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type messageResponse struct {
	Message string `json:"message"`
}

func standardRoute(publicKey *rsa.PublicKey) utils.JwtMiddlewareConfig {
	return utils.JwtMiddlewareConfig{
		ReadFrom:  "header",
		Subject:   "access",
		Scopes:    []string{"basic"},
		PublicKey: publicKey,
	}
}

// serviceError renders service failures as {"message": ...} with their status
// and everything else as an internal error.
func serviceError(c *fiber.Ctx, err error) error {
	var e *services.Error
	if errors.As(err, &e) {
		return c.Status(e.Status()).JSON(messageResponse{Message: e.Message})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return utils.StandardInternalError(c, err)
}
