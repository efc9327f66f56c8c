package controllers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/automate/invitation-server/invitation-service/config"
	"github.com/automate/invitation-server/invitation-service/services"
	"github.com/automate/invitation-server/utils-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
)

type InvitationController struct {
	fx.In

	Service *services.InvitationService
}

type sendInvitationRequest struct {
	SenderId     json.RawMessage `json:"senderId"`
	InvitedEmail string          `json:"invitedEmail"`
	InvitedName  string          `json:"invitedName"`
}

type sendInvitationResponse struct {
	Message    string                  `json:"message"`
	Invitation services.InvitationView `json:"invitation"`
}

type respondInvitationResponse struct {
	Message string             `json:"message"`
	User    *services.UserView `json:"user,omitempty"`
}

func RegisterInvitationController(r *utils.Router, config *config.Config, c InvitationController) {
	api := r.Group("/api", utils.Optional(standardRoute(config.JwtParsedPublicKey)))

	api.Post("/invitation/send", c.sendInvitation)
	api.Delete("/invitation/cancel/:invitationId", c.cancelInvitation)
	api.Put("/invitation/respond/:invitationId/:response", c.respondToInvitation)
	api.Get("/invitations", c.listInvitations)
}

func (r *InvitationController) sendInvitation(c *fiber.Ctx) error {
	body := new(sendInvitationRequest)
	if err := json.Unmarshal(c.Body(), body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(messageResponse{Message: services.MsgMissingFields})
	}

	invitation, err := r.Service.Send(c.UserContext(), utils.GetPrincipal(c), services.SendRequest{
		SenderId:     senderIdString(body.SenderId),
		InvitedEmail: body.InvitedEmail,
		InvitedName:  body.InvitedName,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(sendInvitationResponse{
		Message:    "Invitation sent successfully",
		Invitation: invitation,
	})
}

// senderIdString flattens a senderId of any JSON type into the text the
// service parses. null, false and empty containers count as missing, and
// integral numbers such as 1.0 lose their fraction.
func senderIdString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return ""
	}

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	case json.Number:
		if id, err := v.Int64(); err == nil {
			return strconv.FormatInt(id, 10)
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			return strconv.FormatInt(int64(f), 10)
		}
		return v.String()
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
	case map[string]interface{}:
		if len(v) == 0 {
			return ""
		}
	}

	return string(raw)
}

func (r *InvitationController) cancelInvitation(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("invitationId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(messageResponse{Message: services.MsgInvitationNotFound})
	}

	if err := r.Service.Cancel(c.UserContext(), utils.GetPrincipal(c), id); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(messageResponse{Message: "Invitation cancelled successfully"})
}

func (r *InvitationController) respondToInvitation(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("invitationId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(messageResponse{Message: services.MsgInvitationNotFound})
	}

	result, err := r.Service.Respond(c.UserContext(), utils.GetPrincipal(c), id, c.Params("response"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(respondInvitationResponse{
		Message: result.Message,
		User:    result.User,
	})
}

func (r *InvitationController) listInvitations(c *fiber.Ctx) error {
	invitations, err := r.Service.List(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(invitations)
}
