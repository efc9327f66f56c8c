package main

import (
	"context"
	"time"

	"github.com/automate/invitation-server/http-go"
	"github.com/automate/invitation-server/invitation-service/config"
	"github.com/automate/invitation-server/invitation-service/controllers"
	"github.com/automate/invitation-server/invitation-service/models"
	"github.com/automate/invitation-server/invitation-service/providers/email"
	"github.com/automate/invitation-server/invitation-service/repos"
	"github.com/automate/invitation-server/invitation-service/services"
	"github.com/automate/invitation-server/utils-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
)

func main() {

	opts := []fx.Option{}
	opts = append(opts, provideOptions()...)
	opts = append(opts, fx.Invoke(run))

	app := fx.New(opts...)

	app.Run()
}

func provideOptions() []fx.Option {
	return []fx.Option{
		fx.Provide(config.Parse),
		fx.Provide(func(c *config.Config) utils.BaseConfig { return c }),
		fx.Invoke(utils.ConfigureLogger),
		fx.Provide(utils.ConvertConfig[*config.Config, utils.RedisConfig]),
		fx.Provide(utils.ProvideRedis),
		fx.Provide(utils.NewEmailLocker),
		fx.Provide(config.ProvideDatabase),
		fx.Provide(config.ProvideSmtp),
		fx.Provide(http.CreateServer),
		fx.Provide(utils.GetDefaultRouter),
		fx.Invoke(models.InitModelRegistrations),
		fx.Provide(repos.NewTxRunner),
		fx.Provide(repos.NewUserRepo),
		fx.Provide(repos.NewInvitationRepo),
		fx.Provide(email.NewNotifier),
		fx.Provide(services.NewInvitationService),
		fx.Invoke(controllers.RegisterHealthController),
		fx.Invoke(controllers.RegisterInvitationController),
	}
}

func run(app *fiber.App, config *config.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errChan := make(chan error, 1)

			go func() {
				errChan <- app.Listen(config.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-time.After(100 * time.Millisecond):
				return nil
			}
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}
