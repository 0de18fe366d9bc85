package managers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/MiguelSerea/taskmanagement/internal/interfaces"
)

// ErrTokenUnknown is returned when a bearer token does not resolve to a user.
var ErrTokenUnknown = errors.New("unknown bearer token")

// TokenMgr issues and revokes the opaque bearer tokens presented by clients.
// Tokens carry no claims; the token string itself is the credential and
// sessions end when the row is deleted. Exactly one live token exists per
// user, and IssueOrGet hands the existing one back on repeated logins.
type TokenMgr interface {
	IssueOrGet(ctx context.Context, q interfaces.Querier, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, q interfaces.Querier, token string) (uuid.UUID, error)
	RevokeAll(ctx context.Context, q interfaces.Querier, userID uuid.UUID) error
}

// TokenManager is the Postgres-backed implementation of TokenMgr.
// All methods run against the Querier handed in by the caller, so they can
// participate in a surrounding transaction.
type TokenManager struct{}

// NewTokenManager creates a new TokenManager.
func NewTokenManager() TokenMgr {
	log.Info("Initializing token manager")
	return &TokenManager{}
}

// IssueOrGet returns the user's live bearer token, creating one if none exists.
// The insert relies on the unique index on user_id: when a concurrent login
// already created a token, the conflict clause returns that existing row,
// so two racing logins resolve to the same token.
func (tm *TokenManager) IssueOrGet(ctx context.Context, q interfaces.Querier, userID uuid.UUID) (string, error) {
	token, err := generateBearerToken()
	if err != nil {
		return "", err
	}

	queryString := `INSERT INTO accounts.auth_tokens (token, user_id, created_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING token`
	row := q.QueryRow(ctx, queryString, token, userID)

	var issued string
	if err := row.Scan(&issued); err != nil {
		return "", err
	}

	return issued, nil
}

// Resolve looks up the user a bearer token belongs to.
func (tm *TokenManager) Resolve(ctx context.Context, q interfaces.Querier, token string) (uuid.UUID, error) {
	queryString := "SELECT user_id FROM accounts.auth_tokens WHERE token = $1"
	row := q.QueryRow(ctx, queryString, token)

	var userID uuid.UUID
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrTokenUnknown
		}
		return uuid.Nil, err
	}

	return userID, nil
}

// RevokeAll deletes every bearer token of the user, ending all active sessions.
func (tm *TokenManager) RevokeAll(ctx context.Context, q interfaces.Querier, userID uuid.UUID) error {
	queryString := "DELETE FROM accounts.auth_tokens WHERE user_id = $1"
	if _, err := q.Exec(ctx, queryString, userID); err != nil {
		return err
	}
	return nil
}

// generateBearerToken returns 32 bytes of randomness as a URL-safe string.
func generateBearerToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
