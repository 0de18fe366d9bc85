// Package schemas defines the request structures for the accounts API.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Username is optional and derived from the email local part when absent,
// so at least one of username and email must be present.
// Password is required and must satisfy the password policy.
type RegistrationRequest struct {
	Username  string `json:"username" validate:"omitempty,max=30,username_validation"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"required,min=8,password_validation"`
	FirstName string `json:"first_name" validate:"max=30"`
	LastName  string `json:"last_name" validate:"max=30"`
}

// LoginRequest is a struct that represents a login request
// Identifier is a username or an email address, resolved by shape.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password" validate:"required"`
}

// PasswordResetRequest is a struct that represents a password reset request
// Identifier is a username or an email address, resolved by shape.
type PasswordResetRequest struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
}

// PasswordResetConfirmRequest is a struct that represents a password reset confirmation
// Token is the single-use reset token from the emailed link.
// NewPassword must satisfy the password policy and match ConfirmPassword.
type PasswordResetConfirmRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,password_validation"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// UsernameAvailabilityRequest is a struct that represents a username availability check
type UsernameAvailabilityRequest struct {
	Username string `json:"username" validate:"required,max=30,username_validation"`
}
