package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/automate/invitation-server/invitation-service/models/userdata"
	"github.com/automate/invitation-server/invitation-service/repos"
	"github.com/automate/invitation-server/utils-go"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

var validate = validator.New()

type SendRequest struct {
	SenderId     string `validate:"required"`
	InvitedEmail string `validate:"required"`
	InvitedName  string `validate:"required"`
}

type InvitationView struct {
	Id           int64  `json:"id"`
	SenderId     int64  `json:"senderId"`
	SenderName   string `json:"senderName"`
	InvitedEmail string `json:"invitedEmail"`
	InvitedName  string `json:"invitedName"`
	Status       bool   `json:"status"`
}

type UserView struct {
	Id    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RespondResult struct {
	Message string
	User    *UserView
}

// Notifier is told about every invitation once it has been stored.
type Notifier interface {
	InvitationSent(ctx context.Context, invitation *userdata.Invitation) error
}

type InvitationServiceParams struct {
	fx.In

	Users       *repos.UserRepo
	Invitations *repos.InvitationRepo
	Tx          *repos.TxRunner
	Locker      utils.EmailLocker
	Notifier    Notifier
}

type InvitationService struct {
	users       *repos.UserRepo
	invitations *repos.InvitationRepo
	tx          *repos.TxRunner
	locker      utils.EmailLocker
	notifier    Notifier
}

func NewInvitationService(p InvitationServiceParams) *InvitationService {
	return &InvitationService{
		users:       p.Users,
		invitations: p.Invitations,
		tx:          p.Tx,
		locker:      p.Locker,
		notifier:    p.Notifier,
	}
}

// Send stores a pending invitation from the sender to the invited email. The
// email must neither belong to a user nor to another invitation.
func (s *InvitationService) Send(ctx context.Context, principal *utils.Principal, req SendRequest) (InvitationView, error) {
	if err := validate.Struct(req); err != nil {
		log.Debug().Interface("fields", utils.ValidateStruct(err)).Msg("Invalid invitation request")
		return InvitationView{}, validationError(MsgMissingFields)
	}
	// a zero id is as good as no id
	if strings.TrimSpace(req.SenderId) == "0" {
		return InvitationView{}, validationError(MsgMissingFields)
	}

	senderId, err := strconv.ParseInt(strings.TrimSpace(req.SenderId), 10, 64)
	if err != nil {
		return InvitationView{}, notFoundError(MsgUserNotFound)
	}

	if principal != nil && principal.UserId != senderId {
		return InvitationView{}, forbiddenError(MsgForbiddenSend)
	}

	invitation := &userdata.Invitation{
		SenderId:     senderId,
		InvitedEmail: req.InvitedEmail,
		InvitedName:  req.InvitedName,
		Status:       true,
	}

	// held until the transaction has committed
	unlock := func() {}
	defer func() { unlock() }()

	err = s.tx.Exec(ctx, func(ctx context.Context) error {
		sender, err := s.users.GetUser(ctx, senderId)
		if errors.Is(err, repos.ErrNotFound) {
			return notFoundError(MsgUserNotFound)
		} else if err != nil {
			return err
		}
		invitation.Sender = sender

		release, err := s.locker.Lock(ctx, req.InvitedEmail)
		unlock = release
		if errors.Is(err, utils.ErrLocked) {
			return conflictError(MsgAlreadyInvited)
		} else if err != nil {
			return fmt.Errorf("failed to lock email: %w", err)
		}

		registered, err := s.users.EmailRegistered(ctx, req.InvitedEmail)
		if err != nil {
			return err
		}
		invited, err := s.invitations.EmailInvited(ctx, req.InvitedEmail)
		if err != nil {
			return err
		}
		if registered || invited {
			return conflictError(MsgAlreadyInvited)
		}

		err = s.invitations.AddInvitation(ctx, invitation)
		if errors.Is(err, repos.ErrDuplicate) {
			return conflictError(MsgAlreadyInvited)
		}
		return err
	})
	if err != nil {
		return InvitationView{}, err
	}

	log.Info().Int64("invitation", invitation.Id).Int64("sender", senderId).Str("email", invitation.InvitedEmail).Msg("Invitation sent")

	if err := s.notifier.InvitationSent(ctx, invitation); err != nil {
		log.Warn().Err(err).Int64("invitation", invitation.Id).Msg("Failed to deliver invitation email")
	}

	return newInvitationView(invitation)
}

// Cancel deletes the invitation whatever its status. With a principal, only
// the sender may cancel.
func (s *InvitationService) Cancel(ctx context.Context, principal *utils.Principal, id int64) error {
	return s.tx.Exec(ctx, func(ctx context.Context) error {
		invitation, err := s.invitations.GetInvitation(ctx, id)
		if errors.Is(err, repos.ErrNotFound) {
			return notFoundError(MsgInvitationNotFound)
		} else if err != nil {
			return err
		}

		if principal != nil && principal.UserId != invitation.SenderId {
			return forbiddenError(MsgForbiddenCancel)
		}

		if err := s.invitations.RemoveInvitation(ctx, id); err != nil {
			return err
		}

		log.Info().Int64("invitation", id).Msg("Invitation cancelled")
		return nil
	})
}

// Respond resolves a pending invitation. Declining flips its status to false.
// Accepting creates the invited user and deletes the invitation.
func (s *InvitationService) Respond(ctx context.Context, principal *utils.Principal, id int64, response string) (RespondResult, error) {
	var result RespondResult

	err := s.tx.Exec(ctx, func(ctx context.Context) error {
		invitation, err := s.invitations.GetInvitation(ctx, id)
		if errors.Is(err, repos.ErrNotFound) {
			return notFoundError(MsgInvitationNotFound)
		} else if err != nil {
			return err
		}

		if !invitation.Status {
			return conflictError(MsgAlreadyResponded)
		}

		if response != userdata.ResponseAccepted && response != userdata.ResponseDeclined {
			return validationError(MsgInvalidResponse)
		}

		if principal != nil && principal.Email != invitation.InvitedEmail {
			return forbiddenError(MsgForbiddenRespond)
		}

		result.Message = fmt.Sprintf("Invitation %s successfully", response)

		if response == userdata.ResponseDeclined {
			if err := s.invitations.SetStatus(ctx, id, false); err != nil {
				return err
			}

			log.Info().Int64("invitation", id).Msg("Invitation declined")
			return nil
		}

		user := &userdata.User{
			Name:  invitation.InvitedName,
			Email: invitation.InvitedEmail,
		}
		err = s.users.AddUser(ctx, user)
		if errors.Is(err, repos.ErrDuplicate) {
			return conflictError(MsgAlreadyInvited)
		} else if err != nil {
			return err
		}

		if err := s.invitations.RemoveInvitation(ctx, id); err != nil {
			return err
		}

		view := new(UserView)
		if err := copier.Copy(view, user); err != nil {
			return err
		}
		result.User = view

		log.Info().Int64("invitation", id).Int64("user", user.Id).Msg("Invitation accepted")
		return nil
	})
	if err != nil {
		return RespondResult{}, err
	}

	return result, nil
}

func (s *InvitationService) List(ctx context.Context) ([]InvitationView, error) {
	invitations, err := s.invitations.ListInvitations(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]InvitationView, 0, len(invitations))
	for i := range invitations {
		view, err := newInvitationView(&invitations[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func newInvitationView(invitation *userdata.Invitation) (InvitationView, error) {
	view := InvitationView{}
	if err := copier.Copy(&view, invitation); err != nil {
		return InvitationView{}, err
	}
	return view, nil
}
