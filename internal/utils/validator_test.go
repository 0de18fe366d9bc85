package utils

import (
	"testing"

	"github.com/MiguelSerea/taskmanagement/internal/schemas"
)

func TestPasswordValidation(t *testing.T) {
	validator := GetValidator()

	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"ValidPassword", "test.Password123", true},
		{"NoUppercase", "test.password123", false},
		{"NoLowercase", "TEST.PASSWORD123", false},
		{"NoNumber", "test.Password", false},
		{"NoSpecialChar", "testPassword123", false},
		{"NonASCII", "test.Pässword123", false},
		{"TooShort", "t.P123", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request := schemas.PasswordResetConfirmRequest{
				Token:           "some-token",
				NewPassword:     tc.password,
				ConfirmPassword: tc.password,
			}

			err := validator.Validate.Struct(request)
			if tc.valid && err != nil {
				t.Errorf("expected %q to be valid: %v", tc.password, err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected %q to be rejected", tc.password)
			}
		})
	}
}

func TestUsernameValidation(t *testing.T) {
	validator := GetValidator()

	testCases := []struct {
		name     string
		username string
		valid    bool
	}{
		{"Simple", "testUser", true},
		{"WithAllowedPunctuation", "test.user-name_1", true},
		{"WithSpace", "test user", false},
		{"WithAtSign", "test@user", false},
		{"Empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request := schemas.UsernameAvailabilityRequest{Username: tc.username}

			err := validator.Validate.Struct(request)
			if tc.valid && err != nil {
				t.Errorf("expected %q to be valid: %v", tc.username, err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected %q to be rejected", tc.username)
			}
		})
	}
}

func TestSanitizeStructStripsMarkup(t *testing.T) {
	validator := GetValidator()

	request := &schemas.RegistrationRequest{
		Username:  "testUser",
		FirstName: "<script>alert('x')</script>Test",
		Password:  "test.Password123",
	}

	validator.SanitizeStruct(request)

	if request.FirstName != "Test" {
		t.Errorf("expected markup to be stripped, got %q", request.FirstName)
	}
	if request.Username != "testUser" {
		t.Errorf("clean fields must pass through unchanged, got %q", request.Username)
	}
}
