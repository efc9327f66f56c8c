package utils

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type BaseConfig interface {
	GetPort() string
	GetTimeout() int
	GetReadBufferSize() int
	GetAppName() string
	GetIsProduction() bool
	GetCookieKey() string
	GetBodyLimit() int
}

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

func DecodeBase64(message []byte) ([]byte, error) {
	base64Text := make([]byte, base64.URLEncoding.DecodedLen(len(message)))

	n, err := base64.URLEncoding.Decode(base64Text, message)
	if err != nil {
		return nil, err
	}
	return base64Text[:n], nil
}

func EncodeBase64(message []byte) []byte {
	base64Text := make([]byte, base64.URLEncoding.EncodedLen(len(message)))
	base64.URLEncoding.Encode(base64Text, message)
	return base64Text
}

// ParseFlags reads -dev and -env, loads the env file and reports whether the
// process runs in production mode. An explicit -env file must exist.
func ParseFlags() bool {
	devMode := flag.Bool("dev", false, "Run in dev mode")
	envFile := flag.String("env", "", ".env file path")

	flag.Parse()

	if len(*envFile) > 0 {
		if err := godotenv.Load(*envFile); err != nil {
			log.Panic().Err(err).Str("file", *envFile).Msg("Could not load .env file")
		}
	} else if _, err := os.Stat(".prod.env"); err == nil {
		if err := godotenv.Load(".prod.env"); err != nil {
			log.Panic().Err(err).Msg("Could not load .prod.env file")
		}
	}

	return !*devMode
}

func IsInList(item string, list *[]string) int {
	for i, val := range *list {
		if val == item {
			return i
		}
	}
	return -1
}

func ParsePublicKey(key string) (*rsa.PublicKey, error) {
	if len(key) == 0 {
		return nil, nil
	}

	pem, err := DecodeBase64([]byte(key))
	if err != nil {
		return nil, errors.New("failed to decode jwt public key: " + err.Error())
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, errors.New("failed to parse jwt public key: " + err.Error())
	}
	return publicKey, nil
}

type JwtConfig struct {
	User       string
	ExpireIn   time.Duration
	Scope      string
	Subject    string
	Data       map[string]string
	PrivateKey *rsa.PrivateKey
}

func CreateJwt(c JwtConfig) (string, error) {
	now := time.Now().UTC()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"user":  c.User,
		"data":  c.Data,
		"scope": c.Scope,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"sub":   c.Subject,
		"exp":   now.Add(c.ExpireIn).Unix(),
	}).SignedString(c.PrivateKey)

	if err != nil {
		return "", err
	}
	return token, nil
}

// Format replaces every key of data found in "in" with its value.
func Format(in string, data map[string]string) string {
	for k, v := range data {
		in = strings.ReplaceAll(in, k, v)
	}
	return in
}

func ValidateStruct(err error) []*ErrorResponse {
	var errs []*ErrorResponse
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errs = append(errs, &element)
		}
	}
	return errs
}

func ConvertConfig[T, S any](input T) (*S, error) {
	res, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	cfg := new(S)
	err = json.Unmarshal(res, cfg)

	return cfg, err
}
