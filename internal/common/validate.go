package common

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest accepted account password.
const MinPasswordLength = 6

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare address such as "me@example.com".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("%w: %q", ErrorInvalidLoginFormat, email)
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: at least %d characters required", ErrorInvalidPasswordFormat, MinPasswordLength)
	}
	return nil
}

// ValidateTitle rejects titles that are blank after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrorEmptyTitle
	}
	return nil
}
