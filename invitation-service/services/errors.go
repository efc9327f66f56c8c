package services

import "github.com/gofiber/fiber/v2"

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindForbidden
)

const (
	MsgMissingFields      = "Missing invitedEmail, invitedName or senderId"
	MsgUserNotFound       = "User not found"
	MsgAlreadyInvited     = "User already registered or invited"
	MsgInvitationNotFound = "Invitation not found"
	MsgAlreadyResponded   = "Invitation already responded"
	MsgInvalidResponse    = "Invalid response"
	MsgForbiddenSend      = "Not allowed to send invitation"
	MsgForbiddenCancel    = "Not allowed to cancel invitation"
	MsgForbiddenRespond   = "Not allowed to respond to invitation"
)

// Error is a failure the caller caused. Message is returned to the client
// verbatim.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func notFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func conflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func forbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}
