package services

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
)

const (
	maxNameLength  = 50
	maxEmailLength = 100
	minFilterRunes = 2
	maxFilterRunes = 50
)

// NormalizeEmail is applied before every uniqueness check and write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateUserFields checks a normalized email and trimmed names.
func ValidateUserFields(name, surname, email string, birthDate time.Time, now time.Time) error {
	if !validLength(name, 1, maxNameLength) {
		return domainerrors.ErrInvalidName
	}
	if !validLength(surname, 1, maxNameLength) {
		return domainerrors.ErrInvalidSurname
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if birthDate.IsZero() {
		return domainerrors.ErrInvalidBirthDate
	}
	if DateOnly(birthDate).After(DateOnly(now)) {
		return domainerrors.ErrBirthDateInFuture
	}
	return nil
}

// ValidateUserFilter accepts empty filters; non-empty ones must be 2..50 characters.
func ValidateUserFilter(name, surname string) error {
	if name != "" && !validLength(name, minFilterRunes, maxFilterRunes) {
		return domainerrors.ErrInvalidNameFilter
	}
	if surname != "" && !validLength(surname, minFilterRunes, maxFilterRunes) {
		return domainerrors.ErrInvalidSurnameFilter
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return domainerrors.ErrInvalidEmail
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return domainerrors.ErrInvalidEmail
	}
	return nil
}

func validLength(value string, lo, hi int) bool {
	n := utf8.RuneCountInString(value)
	return n >= lo && n <= hi
}
