package utils

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt"
)

const authScheme = "Bearer"

type Router struct {
	fiber.Router
}

type JwtMiddlewareConfig struct {
	ReadFrom  string
	Subject   string
	Scopes    []string
	PublicKey *rsa.PublicKey
}

// Principal is the authenticated caller stored in the request locals by Protected.
type Principal struct {
	UserId int64
	Email  string
}

func GetDefaultRouter(app *fiber.App) *Router {
	temp := app.Group("")
	return &Router{Router: temp}
}

func GetPrincipal(c *fiber.Ctx) *Principal {
	if p, ok := c.Locals("principal").(*Principal); ok {
		return p
	}
	return nil
}

// Optional returns Protected(config) when a public key is configured and a
// pass-through handler otherwise.
func Optional(config JwtMiddlewareConfig) fiber.Handler {
	if config.PublicKey == nil {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return Protected(config)
}

func Protected(config JwtMiddlewareConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawToken, err := func() (string, error) {
			if config.ReadFrom == "header" {
				auth := c.Get(fiber.HeaderAuthorization)
				l := len(authScheme)
				if len(auth) > l+1 && strings.EqualFold(auth[:l], authScheme) {
					return auth[l+1:], nil
				}

				return "", errors.New("Missing or malformed JWT")
			} else if config.ReadFrom == "cookie" {
				token := c.Cookies("accessToken")
				if token == "" {
					return "", errors.New("Missing or malformed JWT")
				}

				return token, nil
			}
			return "", errors.New("Invalid token read location")
		}()
		if err != nil {
			return accessDenied(c, fiber.StatusUnauthorized, "Missing or malformed JWT")
		}

		tok, err := jwt.Parse(rawToken, func(jwtToken *jwt.Token) (interface{}, error) {
			if _, ok := jwtToken.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected method: %s", jwtToken.Header["alg"])
			}
			return config.PublicKey, nil
		})
		if err != nil {
			return accessDenied(c, fiber.StatusUnauthorized, err.Error())
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok || !tok.Valid {
			return accessDenied(c, fiber.StatusUnauthorized, "Invalid JWT")
		}

		if sub, _ := claims["sub"].(string); sub != config.Subject {
			return accessDenied(c, fiber.StatusUnauthorized, "Invalid JWT")
		}

		scope, _ := claims["scope"].(string)
		scopeArray := strings.Split(scope, " ")
		for _, s := range config.Scopes {
			if IsInList(s, &scopeArray) == -1 {
				return accessDenied(c, fiber.StatusForbidden, "Invalid scope")
			}
		}

		user, _ := claims["user"].(string)
		id, err := strconv.ParseInt(user, 10, 64)
		if err != nil {
			return accessDenied(c, fiber.StatusUnauthorized, "Invalid JWT")
		}

		principal := &Principal{UserId: id}
		if data, ok := claims["data"].(map[string]interface{}); ok {
			principal.Email, _ = data["email"].(string)
		}

		c.Locals("user", id)
		c.Locals("principal", principal)

		return c.Next()
	}
}

func accessDenied(c *fiber.Ctx, status int, description string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":             "access_denied",
		"error_description": description,
	})
}

func StandardInternalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
