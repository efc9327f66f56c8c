package config

import (
	"crypto/tls"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

// ProvideSmtp returns nil when no SMTP host is configured.
func ProvideSmtp(config *Config) *mail.SMTPServer {
	if len(config.EmailConfig.SmtpHost) == 0 {
		return nil
	}

	server := mail.NewSMTPClient()
	server.Host = config.EmailConfig.SmtpHost
	server.Port = config.EmailConfig.SmtpPort
	server.Username = config.EmailConfig.SmtpUser
	server.Password = config.EmailConfig.SmtpPassword
	server.Encryption = mail.EncryptionSTARTTLS
	server.TLSConfig = &tls.Config{InsecureSkipVerify: config.EmailConfig.SmtpSkipInsecure}
	server.SendTimeout = 10 * time.Second
	server.ConnectTimeout = 10 * time.Second

	return server
}
