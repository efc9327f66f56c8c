package email

import (
	"context"
	"errors"
	"html"

	"github.com/automate/invitation-server/invitation-service/config"
	"github.com/automate/invitation-server/invitation-service/models/userdata"
	"github.com/automate/invitation-server/invitation-service/services"
	"github.com/automate/invitation-server/utils-go"
	"github.com/rs/zerolog/log"
	mail "github.com/xhit/go-simple-mail/v2"
)

const invitationSubject = "{{invitation.sender_name}} invited you to {{app.name}}"

const invitationTemplate = `<p>Hi {{invitation.invited_name}},</p>
<p>{{invitation.sender_name}} has invited you to join {{app.name}}.</p>
<p><a href="{{accept_url}}">Accept the invitation</a></p>`

type SmtpNotifier struct {
	server    *mail.SMTPServer
	from      string
	appName   string
	acceptUrl string
}

type LogNotifier struct{}

// NewNotifier sends invitation emails over SMTP when a server is configured
// and only logs them otherwise.
func NewNotifier(c *config.Config, server *mail.SMTPServer) services.Notifier {
	if server == nil {
		return &LogNotifier{}
	}

	return &SmtpNotifier{
		server:    server,
		from:      c.EmailConfig.From,
		appName:   c.AppName,
		acceptUrl: c.EmailConfig.AcceptUrl,
	}
}

func (n *SmtpNotifier) InvitationSent(ctx context.Context, invitation *userdata.Invitation) error {
	subject, body := n.Render(invitation)

	client, err := n.server.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	email := mail.NewMSG()
	email.SetFrom(n.from).
		AddTo(invitation.InvitedEmail).
		SetSubject(subject).
		SetBody(mail.TextHTML, body)

	if email.Error != nil {
		return email.Error
	}

	return email.Send(client)
}

// Render returns the subject and html body for the invitation email.
func (n *SmtpNotifier) Render(invitation *userdata.Invitation) (string, string) {
	vars := invitation.ToMap()
	vars["{{app.name}}"] = n.appName
	acceptUrl := utils.Format(n.acceptUrl, vars)

	escaped := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		escaped[k] = html.EscapeString(v)
	}
	escaped["{{accept_url}}"] = html.EscapeString(acceptUrl)

	return utils.Format(invitationSubject, vars), utils.Format(invitationTemplate, escaped)
}

func (n *LogNotifier) InvitationSent(ctx context.Context, invitation *userdata.Invitation) error {
	if invitation == nil {
		return errors.New("nil invitation")
	}

	log.Debug().Int64("invitation", invitation.Id).Str("email", invitation.InvitedEmail).Msg("SMTP not configured, skipping invitation email")
	return nil
}
