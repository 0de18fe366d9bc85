package managers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newRedisResetManager(t *testing.T) (*RedisResetManager, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisResetManager(client), server
}

func TestRedisResetIssueReplacesOutstandingToken(t *testing.T) {
	rm, _ := newRedisResetManager(t)
	userID := uuid.New()
	ctx := context.Background()

	first, err := rm.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := rm.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := rm.Validate(ctx, first); !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("expected the first token to be displaced, got %v", err)
	}

	resolved, err := rm.Validate(ctx, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != userID {
		t.Errorf("resolved wrong user: %s", resolved)
	}
}

func TestRedisResetConsumeIsSingleUse(t *testing.T) {
	rm, _ := newRedisResetManager(t)
	userID := uuid.New()
	ctx := context.Background()

	token, err := rm.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := rm.Consume(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error on first consume: %v", err)
	}
	if resolved != userID {
		t.Errorf("resolved wrong user: %s", resolved)
	}

	if _, err := rm.Consume(ctx, token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("expected ErrResetTokenInvalid on replay, got %v", err)
	}
}

func TestRedisResetTokenExpires(t *testing.T) {
	rm, server := newRedisResetManager(t)
	userID := uuid.New()
	ctx := context.Background()

	token, err := rm.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	server.FastForward(59 * time.Minute)
	if _, err := rm.Validate(ctx, token); err != nil {
		t.Fatalf("token must still be valid before expiry: %v", err)
	}

	server.FastForward(2 * time.Minute)
	if _, err := rm.Validate(ctx, token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("expected ErrResetTokenInvalid after expiry, got %v", err)
	}
}

func TestRedisResetValidateUnknownToken(t *testing.T) {
	rm, _ := newRedisResetManager(t)

	if _, err := rm.Validate(context.Background(), "never-issued"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Errorf("expected ErrResetTokenInvalid, got %v", err)
	}
}
