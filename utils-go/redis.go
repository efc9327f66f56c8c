package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

var ErrLocked = errors.New("resource is locked")

const emailLockTtl = 10 * time.Second

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisConfig struct {
	RedisUrl string `env:"REDIS_URL"`
}

// ProvideRedis returns a nil client when no url is configured.
func ProvideRedis(config *RedisConfig) (*redis.Client, error) {
	if len(config.RedisUrl) == 0 {
		return nil, nil
	}

	options, err := redis.ParseURL(config.RedisUrl)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)

	_, err = client.Ping(client.Context()).Result()
	if err != nil {
		return nil, err
	}

	return client, nil
}

// EmailLocker serializes work on a single email address. The returned unlock
// func is always safe to call.
type EmailLocker interface {
	Lock(ctx context.Context, email string) (func(), error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEmailLocker(client *redis.Client) EmailLocker {
	if client == nil {
		return noopLocker{}
	}
	return &RedisLocker{client: client, ttl: emailLockTtl}
}

func (l *RedisLocker) Lock(ctx context.Context, email string) (func(), error) {
	key := emailLockKey(email)
	token := hex.EncodeToString(GenerateRandomBytes(16))

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return func() {}, err
	}
	if !ok {
		return func() {}, ErrLocked
	}

	return func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to release lock")
		}
	}, nil
}

// Emails are matched exactly, the same way the users and invitations tables
// compare them.
func emailLockKey(email string) string {
	return "invitation-lock:" + email
}

func GenerateRandomBytes(size uint32) []byte {
	token := make([]byte, size)
	rand.Read(token)
	return token
}
