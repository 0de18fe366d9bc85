package schemas

// CustomError is the error shape returned to clients.
// Code is a stable identifier, Message a human readable explanation.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// The error catalog of the accounts API. Handlers pick the HTTP status,
// the catalog only carries code and message so clients can match on codes.
var (
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	UsernameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The username is already taken. Please try another username.",
	}
	EmailTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The email is already registered. Please try another email.",
	}
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found.",
	}
	InvalidResetToken = &CustomError{
		Code:    "ERR-005",
		Message: "The password reset token is invalid or has expired. Please request a new one.",
	}
	PasswordMismatch = &CustomError{
		Code:    "ERR-006",
		Message: "The passwords do not match. Please check both fields and try again.",
	}
	InvalidCredentials = &CustomError{
		Code:    "ERR-007",
		Message: "The credentials are invalid. Please check your identifier and password.",
	}
	UserDeactivated = &CustomError{
		Code:    "ERR-008",
		Message: "The account is deactivated. Please contact support.",
	}
	MissingContact = &CustomError{
		Code:    "ERR-009",
		Message: "The request is missing a username or email.",
	}
	EmailUnreachable = &CustomError{
		Code:    "ERR-010",
		Message: "The email address appears to be unreachable. Please check it and try again.",
	}
	EmailNotSent = &CustomError{
		Code:    "ERR-011",
		Message: "The email could not be sent. Please try again later.",
	}
	Unauthorized = &CustomError{
		Code:    "ERR-014",
		Message: "The request is unauthorized. Please login to your account.",
	}
	DatabaseError = &CustomError{
		Code:    "ERR-020",
		Message: "An internal database error occurred. Please try again later.",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-021",
		Message: "An internal server error occurred. Please try again later.",
	}
)
