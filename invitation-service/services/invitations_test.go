package services

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/automate/invitation-server/invitation-service/config"
	"github.com/automate/invitation-server/invitation-service/models"
	"github.com/automate/invitation-server/invitation-service/models/userdata"
	"github.com/automate/invitation-server/invitation-service/repos"
	"github.com/automate/invitation-server/utils-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) InvitationSent(ctx context.Context, invitation *userdata.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, invitation.InvitedEmail)
	return nil
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, utils.ErrLocked
}

type fixture struct {
	service  *InvitationService
	users    *repos.UserRepo
	notifier *recordingNotifier
	sender   *userdata.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := config.ProvideDatabase(&config.Config{
		DbDriver:     config.DriverSqlite,
		Dsn:          ":memory:",
		IsProduction: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, models.CreateSchema(context.Background(), db))

	users := repos.NewUserRepo(db)
	sender := &userdata.User{Name: "Sender", Email: "sender@example.com"}
	require.NoError(t, users.AddUser(context.Background(), sender))

	notifier := &recordingNotifier{}
	service := NewInvitationService(InvitationServiceParams{
		Users:       users,
		Invitations: repos.NewInvitationRepo(db),
		Tx:          repos.NewTxRunner(db),
		Locker:      utils.NewEmailLocker(nil),
		Notifier:    notifier,
	})

	return &fixture{service: service, users: users, notifier: notifier, sender: sender}
}

func (f *fixture) send(t *testing.T, email, name string) InvitationView {
	t.Helper()

	view, err := f.service.Send(context.Background(), nil, SendRequest{
		SenderId:     strconv.FormatInt(f.sender.Id, 10),
		InvitedEmail: email,
		InvitedName:  name,
	})
	require.NoError(t, err)
	return view
}

func requireServiceError(t *testing.T, err error, kind ErrorKind, message string) {
	t.Helper()

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, kind, e.Kind)
	assert.Equal(t, message, e.Message)
}

func TestSendInvitation(t *testing.T) {
	f := newFixture(t)

	view := f.send(t, "a@x.com", "A")

	assert.NotZero(t, view.Id)
	assert.Equal(t, f.sender.Id, view.SenderId)
	assert.Equal(t, "Sender", view.SenderName)
	assert.Equal(t, "a@x.com", view.InvitedEmail)
	assert.Equal(t, "A", view.InvitedName)
	assert.True(t, view.Status)
	assert.Equal(t, []string{"a@x.com"}, f.notifier.sent)
}

func TestSendInvitationMissingFields(t *testing.T) {
	f := newFixture(t)
	senderId := strconv.FormatInt(f.sender.Id, 10)

	cases := map[string]SendRequest{
		"no sender": {InvitedEmail: "a@x.com", InvitedName: "A"},
		"no email":  {SenderId: senderId, InvitedName: "A"},
		"no name":   {SenderId: senderId, InvitedEmail: "a@x.com"},
		"only mail": {InvitedEmail: "a@x.com"},
		"zero id":   {SenderId: "0", InvitedEmail: "a@x.com", InvitedName: "A"},
		"padded 0":  {SenderId: " 0 ", InvitedEmail: "a@x.com", InvitedName: "A"},
		"nothing":   {},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Send(context.Background(), nil, req)
			requireServiceError(t, err, KindValidation, MsgMissingFields)
		})
	}

	assert.Empty(t, f.notifier.sent)
}

func TestSendInvitationUnknownSender(t *testing.T) {
	f := newFixture(t)

	for _, senderId := range []string{"999", "abc", "1.5"} {
		_, err := f.service.Send(context.Background(), nil, SendRequest{
			SenderId:     senderId,
			InvitedEmail: "a@x.com",
			InvitedName:  "A",
		})
		requireServiceError(t, err, KindNotFound, MsgUserNotFound)
	}
}

func TestSendInvitationAlreadyInvited(t *testing.T) {
	f := newFixture(t)
	f.send(t, "a@x.com", "A")

	_, err := f.service.Send(context.Background(), nil, SendRequest{
		SenderId:     strconv.FormatInt(f.sender.Id, 10),
		InvitedEmail: "a@x.com",
		InvitedName:  "II. A",
	})
	requireServiceError(t, err, KindConflict, MsgAlreadyInvited)
}

func TestSendInvitationDeclinedStillBlocks(t *testing.T) {
	f := newFixture(t)
	view := f.send(t, "a@x.com", "A")

	_, err := f.service.Respond(context.Background(), nil, view.Id, userdata.ResponseDeclined)
	require.NoError(t, err)

	_, err = f.service.Send(context.Background(), nil, SendRequest{
		SenderId:     strconv.FormatInt(f.sender.Id, 10),
		InvitedEmail: "a@x.com",
		InvitedName:  "A",
	})
	requireServiceError(t, err, KindConflict, MsgAlreadyInvited)
}

func TestSendInvitationRegisteredEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Send(context.Background(), nil, SendRequest{
		SenderId:     strconv.FormatInt(f.sender.Id, 10),
		InvitedEmail: f.sender.Email,
		InvitedName:  "Me",
	})
	requireServiceError(t, err, KindConflict, MsgAlreadyInvited)
}

func TestSendInvitationEmailCaseSensitive(t *testing.T) {
	f := newFixture(t)
	f.send(t, "a@x.com", "A")

	view := f.send(t, "A@x.com", "Upper A")
	assert.Equal(t, "A@x.com", view.InvitedEmail)
}

func TestSendInvitationEmailLocked(t *testing.T) {
	f := newFixture(t)
	f.service.locker = busyLocker{}

	_, err := f.service.Send(context.Background(), nil, SendRequest{
		SenderId:     strconv.FormatInt(f.sender.Id, 10),
		InvitedEmail: "a@x.com",
		InvitedName:  "A",
	})
	requireServiceError(t, err, KindConflict, MsgAlreadyInvited)

	invitations, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, invitations)
}

func TestSendInvitationAsOtherUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Send(context.Background(), &utils.Principal{UserId: f.sender.Id + 1}, SendRequest{
		SenderId:     strconv.FormatInt(f.sender.Id, 10),
		InvitedEmail: "a@x.com",
		InvitedName:  "A",
	})
	requireServiceError(t, err, KindForbidden, MsgForbiddenSend)
}

func TestAcceptInvitation(t *testing.T) {
	f := newFixture(t)
	view := f.send(t, "a@x.com", "A")

	result, err := f.service.Respond(context.Background(), nil, view.Id, userdata.ResponseAccepted)
	require.NoError(t, err)

	assert.Equal(t, "Invitation accepted successfully", result.Message)
	require.NotNil(t, result.User)
	assert.NotZero(t, result.User.Id)
	assert.Equal(t, "A", result.User.Name)
	assert.Equal(t, "a@x.com", result.User.Email)

	registered, err := f.users.EmailRegistered(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, registered)

	invitations, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, invitations)

	_, err = f.service.Respond(context.Background(), nil, view.Id, userdata.ResponseAccepted)
	requireServiceError(t, err, KindNotFound, MsgInvitationNotFound)
}

func TestDeclineInvitation(t *testing.T) {
	f := newFixture(t)
	view := f.send(t, "a@x.com", "A")

	result, err := f.service.Respond(context.Background(), nil, view.Id, userdata.ResponseDeclined)
	require.NoError(t, err)
	assert.Equal(t, "Invitation declined successfully", result.Message)
	assert.Nil(t, result.User)

	invitations, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	assert.Equal(t, view.Id, invitations[0].Id)
	assert.False(t, invitations[0].Status)

	registered, err := f.users.EmailRegistered(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, registered)

	for _, response := range []string{userdata.ResponseDeclined, userdata.ResponseAccepted, "maybe"} {
		_, err = f.service.Respond(context.Background(), nil, view.Id, response)
		requireServiceError(t, err, KindConflict, MsgAlreadyResponded)
	}
}

func TestRespondInvalidResponse(t *testing.T) {
	f := newFixture(t)
	view := f.send(t, "a@x.com", "A")

	for _, response := range []string{"maybe", "", "ACCEPTED", "accept"} {
		_, err := f.service.Respond(context.Background(), nil, view.Id, response)
		requireServiceError(t, err, KindValidation, MsgInvalidResponse)
	}

	invitations, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	assert.True(t, invitations[0].Status)
}

func TestRespondUnknownInvitation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Respond(context.Background(), nil, 999, "maybe")
	requireServiceError(t, err, KindNotFound, MsgInvitationNotFound)
}

func TestRespondAsOtherEmail(t *testing.T) {
	f := newFixture(t)
	view := f.send(t, "a@x.com", "A")

	_, err := f.service.Respond(context.Background(), &utils.Principal{UserId: 7, Email: "b@x.com"}, view.Id, userdata.ResponseAccepted)
	requireServiceError(t, err, KindForbidden, MsgForbiddenRespond)

	_, err = f.service.Respond(context.Background(), &utils.Principal{UserId: 7, Email: "A@X.com"}, view.Id, userdata.ResponseAccepted)
	requireServiceError(t, err, KindForbidden, MsgForbiddenRespond)

	result, err := f.service.Respond(context.Background(), &utils.Principal{UserId: 7, Email: "a@x.com"}, view.Id, userdata.ResponseDeclined)
	require.NoError(t, err)
	assert.Equal(t, "Invitation declined successfully", result.Message)
}

func TestCancelInvitation(t *testing.T) {
	f := newFixture(t)
	pending := f.send(t, "a@x.com", "A")
	declined := f.send(t, "b@x.com", "B")

	_, err := f.service.Respond(context.Background(), nil, declined.Id, userdata.ResponseDeclined)
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(context.Background(), nil, pending.Id))
	require.NoError(t, f.service.Cancel(context.Background(), nil, declined.Id))

	invitations, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, invitations)

	err = f.service.Cancel(context.Background(), nil, pending.Id)
	requireServiceError(t, err, KindNotFound, MsgInvitationNotFound)

	// the email can be invited again once cancelled
	f.send(t, "a@x.com", "A")
}

func TestCancelInvitationAsOtherUser(t *testing.T) {
	f := newFixture(t)
	view := f.send(t, "a@x.com", "A")

	err := f.service.Cancel(context.Background(), &utils.Principal{UserId: f.sender.Id + 1}, view.Id)
	requireServiceError(t, err, KindForbidden, MsgForbiddenCancel)

	require.NoError(t, f.service.Cancel(context.Background(), &utils.Principal{UserId: f.sender.Id}, view.Id))
}

func TestListInvitations(t *testing.T) {
	f := newFixture(t)

	invitations, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, invitations)
	assert.Empty(t, invitations)

	first := f.send(t, "a@x.com", "A")
	second := f.send(t, "b@x.com", "B")

	invitations, err = f.service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []InvitationView{first, second}, invitations)
	assert.Equal(t, "Sender", invitations[1].SenderName)
}
