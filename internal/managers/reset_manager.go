package managers

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"

	"github.com/MiguelSerea/taskmanagement/internal/interfaces"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

// ErrResetTokenInvalid is returned for reset tokens that are unknown,
// already consumed, or past their expiry. Callers must not distinguish
// the three cases towards the client.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// ResetTokenMgr manages the single-use password reset tokens.
// Issue replaces any outstanding token for the user, Validate checks a token
// without consuming it, and Consume atomically claims it so a second attempt
// with the same token is rejected.
type ResetTokenMgr interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Validate(ctx context.Context, token string) (uuid.UUID, error)
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}

// PostgresResetManager stores reset tokens in the password_reset_tokens
// table. Only the sha256 of the token value is persisted, so a leaked
// database dump does not yield usable reset links.
type PostgresResetManager struct {
	pool interfaces.PgxPoolIface
	ttl  time.Duration
	now  func() time.Time
}

// NewPostgresResetManager creates a reset-token manager backed by the given pool.
func NewPostgresResetManager(pool interfaces.PgxPoolIface) *PostgresResetManager {
	log.Info("Initializing reset token manager (postgres)")
	return &PostgresResetManager{
		pool: pool,
		ttl:  ResetTokenTTL,
		now:  time.Now,
	}
}

// Issue generates a fresh reset token for the user and stores its hash.
// Any earlier outstanding token of the same user is dropped in the same
// transaction, so only the most recent token is live.
func (rm *PostgresResetManager) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.New().String()
	issuedAt := rm.now()
	expiresAt := issuedAt.Add(rm.ttl)

	tx, err := rm.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "DELETE FROM accounts.password_reset_tokens WHERE user_id = $1", userID); err != nil {
		return "", err
	}

	queryString := `INSERT INTO accounts.password_reset_tokens (token_hash, user_id, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, false)`
	if _, err = tx.Exec(ctx, queryString, hashResetToken(token), userID, issuedAt, expiresAt); err != nil {
		return "", err
	}

	if err = tx.Commit(ctx); err != nil {
		return "", err
	}

	return token, nil
}

// Validate resolves a token to its user without consuming it.
func (rm *PostgresResetManager) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	queryString := "SELECT user_id, used, expires_at FROM accounts.password_reset_tokens WHERE token_hash = $1"
	row := rm.pool.QueryRow(ctx, queryString, hashResetToken(token))

	var userID uuid.UUID
	var used bool
	var expiresAt pgtype.Timestamptz
	if err := row.Scan(&userID, &used, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrResetTokenInvalid
		}
		return uuid.Nil, err
	}

	if used || !expiresAt.Valid || !rm.now().Before(expiresAt.Time) {
		return uuid.Nil, ErrResetTokenInvalid
	}

	return userID, nil
}

// Consume claims the token. The guarded update marks it used only when it is
// still live, so concurrent confirmations race for a single winner.
func (rm *PostgresResetManager) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	queryString := `UPDATE accounts.password_reset_tokens SET used = true
		WHERE token_hash = $1 AND NOT used AND expires_at > $2
		RETURNING user_id`
	row := rm.pool.QueryRow(ctx, queryString, hashResetToken(token), rm.now())

	var userID uuid.UUID
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrResetTokenInvalid
		}
		return uuid.Nil, err
	}

	return userID, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
