package service

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	minUsernameLength = 3
	maxUsernameLength = 32
	maxEmailLength    = 254
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and lower-cases username. Absent, empty and
// whitespace-only usernames all become nil.
func NormalizeUsername(username *string) *string {
	if username == nil {
		return nil
	}
	u := strings.ToLower(strings.TrimSpace(*username))
	if u == "" {
		return nil
	}
	return &u
}

func validateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email", "email is required")
	}
	if len(email) > maxEmailLength {
		return domain.NewValidationError("email", "email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return domain.NewValidationError("email", "email is malformed")
	}
	local, host, _ := strings.Cut(email, "@")
	if local == "" || !strings.Contains(host, ".") || strings.HasSuffix(host, ".") || strings.HasPrefix(host, ".") {
		return domain.NewValidationError("email", "email is malformed")
	}
	return nil
}

// validateUsername expects a normalized username.
func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return domain.NewValidationError("username", "username must be %d to %d characters", minUsernameLength, maxUsernameLength)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return domain.NewValidationError("username", "username may only contain letters, digits, '.', '_' and '-'")
		}
	}
	return nil
}

// validatePassword enforces the minimum strength: length bounds plus at least
// one letter and one digit.
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.NewValidationError("password", "password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return domain.NewValidationError("password", "password must be at most %d characters", MaxPasswordLength)
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return domain.NewValidationError("password", "password must contain a letter and a digit")
	}
	return nil
}
