package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a user account.
type User struct {
	ID           uuid.UUID  `json:"id"`            // Unique identifier for the user.
	Username     string     `json:"username"`      // Username of the user, unique.
	Email        string     `json:"email"`         // Email address, optional but unique when set.
	PasswordHash string     `json:"-"`             // Bcrypt hash of the password.
	FirstName    string     `json:"first_name"`    // First name of the user.
	LastName     string     `json:"last_name"`     // Last name of the user.
	IsActive     bool       `json:"is_active"`     // Whether the account may log in.
	CreatedAt    *time.Time `json:"created_at"`    // Timestamp when the user was created.
}

// AuthToken is the opaque bearer token handed out at registration and login.
// One live token exists per user; it is replaced only when revoked.
type AuthToken struct {
	Token     string     `json:"token"`      // Opaque token value, primary key.
	UserID    uuid.UUID  `json:"user_id"`    // Owner of the token.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the token was issued.
}

// ResetToken is a single-use, time-limited password reset token.
// Only the sha256 of the token value is persisted.
type ResetToken struct {
	TokenHash string     `json:"-"`          // sha256 of the token value, primary key.
	UserID    uuid.UUID  `json:"user_id"`    // User the token was issued for.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the token was issued.
	ExpiresAt *time.Time `json:"expires_at"` // Timestamp after which the token is rejected.
	Used      bool       `json:"used"`       // Set once the token has been consumed.
}
