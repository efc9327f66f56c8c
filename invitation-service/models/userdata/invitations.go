package userdata

import (
	"strconv"

	"github.com/uptrace/bun"
)

const (
	ResponseAccepted = "accepted"
	ResponseDeclined = "declined"
)

// Invitation links a sender to an invited email and name. Status is true
// while the invitation awaits a response and false once declined; accepted
// invitations are deleted.
type Invitation struct {
	bun.BaseModel `bun:"table:invitations,alias:i"`

	Id           int64  `bun:",pk,autoincrement"`
	SenderId     int64  `bun:",notnull"`
	Sender       *User  `bun:"rel:belongs-to,join:sender_id=id"`
	InvitedEmail string `bun:",notnull,unique"`
	InvitedName  string `bun:",notnull"`
	Status       bool   `bun:",notnull"`
}

func (invitation *Invitation) SenderName() string {
	if invitation.Sender == nil {
		return ""
	}
	return invitation.Sender.Name
}

func (invitation *Invitation) ToMap() map[string]string {
	return map[string]string{
		"{{invitation.id}}":            strconv.FormatInt(invitation.Id, 10),
		"{{invitation.invited_email}}": invitation.InvitedEmail,
		"{{invitation.invited_name}}":  invitation.InvitedName,
		"{{invitation.sender_name}}":   invitation.SenderName(),
	}
}
