package config

import (
	"crypto/rsa"

	"github.com/automate/invitation-server/utils-go"
	"github.com/caarlos0/env/v6"
)

type Config struct {
	Port               string         `env:"LISTEN_ADDR" envDefault:":3000"`
	Timeout            uint64         `env:"TIMEOUT" envDefault:"10"`
	ReadBufferSize     int            `env:"READ_BUFFER_SIZE" envDefault:"4096"`
	BodyLimit          int            `env:"BODY_LIMIT" envDefault:"1048576"`
	AppName            string         `env:"APP_NAME" envDefault:"Automate Invitations"`
	IsProduction       bool           `env:"PRODUCTION"`
	DbDriver           string         `env:"DB_DRIVER" envDefault:"postgres"`
	Dsn                string         `env:"DSN"`
	RedisUrl           string         `env:"REDIS_URL"`
	CookieKey          string         `env:"COOKIE_KEY"`
	JwtPublicKey       string         `env:"JWT_PUBLIC_KEY"`
	JwtParsedPublicKey *rsa.PublicKey `json:"-"`
	EmailConfig        EmailConfig    `envPrefix:"EMAIL_"`
}

type EmailConfig struct {
	SmtpHost         string `env:"SMTP_HOST"`
	SmtpPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SmtpUser         string `env:"SMTP_USER"`
	SmtpPassword     string `env:"SMTP_PASSWORD"`
	SmtpSkipInsecure bool   `env:"SMTP_SKIP_INSECURE" envDefault:"false"`
	From             string `env:"FROM"`
	AcceptUrl        string `env:"ACCEPT_URL" envDefault:"http://localhost:3000/api/invitation/respond/{{invitation.id}}/accepted"`
}

func Parse() (*Config, error) {
	return Load(utils.ParseFlags())
}

// Load reads the configuration from the environment. isProduction is the
// fallback when PRODUCTION is unset.
func Load(isProduction bool) (*Config, error) {
	cfg := Config{
		IsProduction: isProduction,
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	publicKey, err := utils.ParsePublicKey(cfg.JwtPublicKey)
	if err != nil {
		return nil, err
	}
	cfg.JwtParsedPublicKey = publicKey

	if len(cfg.EmailConfig.From) == 0 {
		cfg.EmailConfig.From = cfg.EmailConfig.SmtpUser
	}

	return &cfg, nil
}

func (c *Config) GetPort() string {
	return c.Port
}

func (c *Config) GetTimeout() int {
	return int(c.Timeout)
}

func (c *Config) GetReadBufferSize() int {
	return c.ReadBufferSize
}

func (c *Config) GetAppName() string {
	return c.AppName
}

func (c *Config) GetIsProduction() bool {
	return c.IsProduction
}

func (c *Config) GetCookieKey() string {
	return c.CookieKey
}

func (c *Config) GetBodyLimit() int {
	return c.BodyLimit
}
