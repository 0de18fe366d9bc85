package managers

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func newTokenManagerMockPool(t *testing.T) pgxmock.PgxPoolIface {
	poolMock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("error creating mock database pool: %v", err)
	}
	return poolMock
}

// A concurrent login already holds a token, the conflict clause hands it back.
func TestIssueOrGetReturnsExistingToken(t *testing.T) {
	tm := NewTokenManager()
	poolMock := newTokenManagerMockPool(t)
	userID := uuid.New()

	poolMock.ExpectQuery("INSERT INTO accounts.auth_tokens").
		WithArgs(pgxmock.AnyArg(), userID).
		WillReturnRows(pgxmock.NewRows([]string{"token"}).AddRow("existing-token"))

	token, err := tm.IssueOrGet(context.Background(), poolMock, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "existing-token" {
		t.Errorf("expected the stored token, got %q", token)
	}

	if err := poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestResolveKnownToken(t *testing.T) {
	tm := NewTokenManager()
	poolMock := newTokenManagerMockPool(t)
	userID := uuid.New()

	poolMock.ExpectQuery("SELECT user_id FROM accounts.auth_tokens").
		WithArgs("bearer-token").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userID))

	resolved, err := tm.Resolve(context.Background(), poolMock, "bearer-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != userID {
		t.Errorf("resolved wrong user: %s", resolved)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	tm := NewTokenManager()
	poolMock := newTokenManagerMockPool(t)

	poolMock.ExpectQuery("SELECT user_id FROM accounts.auth_tokens").
		WithArgs("stale-token").
		WillReturnError(pgx.ErrNoRows)

	if _, err := tm.Resolve(context.Background(), poolMock, "stale-token"); !errors.Is(err, ErrTokenUnknown) {
		t.Errorf("expected ErrTokenUnknown, got %v", err)
	}
}

func TestRevokeAllDeletesTokens(t *testing.T) {
	tm := NewTokenManager()
	poolMock := newTokenManagerMockPool(t)
	userID := uuid.New()

	poolMock.ExpectExec("DELETE FROM accounts.auth_tokens").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := tm.RevokeAll(context.Background(), poolMock, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestGenerateBearerToken(t *testing.T) {
	first, err := generateBearerToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := generateBearerToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first == second {
		t.Error("tokens must be unique")
	}

	raw, err := base64.RawURLEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("expected 32 bytes of randomness, got %d", len(raw))
	}
}
