package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MetadataDTO is a struct that represents the version response of the root route
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// UserDTO is a struct that represents a user response
// Name mirrors the display name convention of the frontend: first name when
// present, username otherwise.
type UserDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

// TokenDTO is a struct that represents an authenticated response
// Token is the opaque bearer token, User the account it belongs to
type TokenDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// MessageDTO is a struct that represents a plain message response
type MessageDTO struct {
	Message string `json:"message"`
}

// UsernameAvailabilityDTO is a struct that represents a username availability response
type UsernameAvailabilityDTO struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}
