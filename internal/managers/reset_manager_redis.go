package managers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// resetTokenKeyPrefix maps token hash -> user ID.
	resetTokenKeyPrefix = "pwreset:"
	// resetUserKeyPrefix maps user ID -> token hash, so a newer request
	// can drop the previous token.
	resetUserKeyPrefix = "pwreset:user:"
)

// RedisResetManager stores reset tokens in Redis with the TTL enforced by
// key expiry. A consumed or expired token simply stops existing, which
// satisfies the same rejection contract as the Postgres store.
type RedisResetManager struct {
	client *redis.Client
}

// NewRedisResetManager creates a reset-token manager backed by the given client.
func NewRedisResetManager(client *redis.Client) *RedisResetManager {
	log.Info("Initializing reset token manager (redis)")
	return &RedisResetManager{client: client}
}

// Issue generates a fresh reset token for the user, replacing any
// outstanding one.
func (rm *RedisResetManager) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.New().String()
	tokenHash := hashResetToken(token)
	userKey := resetUserKeyPrefix + userID.String()

	oldHash, err := rm.client.Get(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	// Dropping the previous token and writing the new pair must land
	// together, otherwise a partial write leaves a token the next Issue
	// cannot displace.
	pipe := rm.client.TxPipeline()
	if oldHash != "" {
		pipe.Del(ctx, resetTokenKeyPrefix+oldHash)
	}
	pipe.Set(ctx, resetTokenKeyPrefix+tokenHash, userID.String(), ResetTokenTTL)
	pipe.Set(ctx, userKey, tokenHash, ResetTokenTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}

	return token, nil
}

// Validate resolves a token to its user without consuming it.
func (rm *RedisResetManager) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := rm.client.Get(ctx, resetTokenKeyPrefix+hashResetToken(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrResetTokenInvalid
		}
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrResetTokenInvalid
	}

	return userID, nil
}

// Consume claims the token. GETDEL makes the claim atomic, so only one of
// several concurrent confirmations sees the value.
func (rm *RedisResetManager) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := rm.client.GetDel(ctx, resetTokenKeyPrefix+hashResetToken(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrResetTokenInvalid
		}
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrResetTokenInvalid
	}

	rm.client.Del(ctx, resetUserKeyPrefix+userID.String())

	return userID, nil
}
