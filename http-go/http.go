package http

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/automate/invitation-server/utils-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/helmet/v2"
	"github.com/rs/zerolog/log"
)

func CreateServer(config utils.BaseConfig) *fiber.App {
	fiberConfig := fiber.Config{
		AppName:        config.GetAppName(),
		ReadTimeout:    time.Second * time.Duration(config.GetTimeout()),
		WriteTimeout:   time.Second * time.Duration(config.GetTimeout()),
		ProxyHeader:    fiber.HeaderXForwardedFor,
		ReadBufferSize: config.GetReadBufferSize(),
		BodyLimit:      config.GetBodyLimit(),
		ErrorHandler:   errorHandler,
	}

	if !config.GetIsProduction() {
		fiberConfig.EnablePrintRoutes = true
	}

	app := fiber.New(fiberConfig)

	if len(config.GetCookieKey()) > 0 {
		app.Use(encryptcookie.New(encryptcookie.Config{
			Key: config.GetCookieKey(),
		}))
	}

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			os.Stderr.WriteString(fmt.Sprintf("panic: %v\n%s\n", e, string(debug.Stack())))
		},
	}))

	app.Use(requestid.New())

	if !config.GetIsProduction() {
		log.Info().Msg("Running in DEV mode")

		app.Use(logger.New(logger.Config{
			Format:     "${pid} ${ip} ${locals:requestid} ${status} ${latency} - ${method} ${path}\n",
			TimeFormat: time.RFC3339,
			Output:     os.Stdout,
		}))
	} else {
		app.Use(helmet.New())
	}

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
