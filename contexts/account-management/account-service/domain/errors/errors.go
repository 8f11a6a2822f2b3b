package errors

import (
	"errors"
	"fmt"
)

// Kinds every module error resolves to through errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrInternal        = errors.New("internal error")
)

var (
	ErrIdentityMissing = newError(ErrUnauthenticated, "authentication required")
	ErrInvalidToken    = newError(ErrUnauthenticated, "invalid or expired token")

	ErrAdminRequired = newError(ErrForbidden, "admin role required")
	ErrNotOwner      = newError(ErrForbidden, "access to another user's resources is forbidden")

	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrCardNotFound       = newError(ErrNotFound, "payment card not found")
	ErrCacheEntryNotFound = newError(ErrNotFound, "cache entry not found")

	ErrEmailTaken       = newError(ErrConflict, "email is already registered")
	ErrCardNumberTaken  = newError(ErrConflict, "card number is already registered")
	ErrConcurrentUpdate = newError(ErrConflict, "resource was modified concurrently")

	ErrUserInactive        = newError(ErrInvalidState, "user is inactive")
	ErrUserAlreadyActive   = newError(ErrInvalidState, "user is already active")
	ErrUserAlreadyInactive = newError(ErrInvalidState, "user is already inactive")
	ErrCardLimitReached    = newError(ErrInvalidState, "user already owns the maximum number of cards")
	ErrCardInactive        = newError(ErrInvalidState, "payment card is inactive")
	ErrCardAlreadyActive   = newError(ErrInvalidState, "payment card is already active")
	ErrCardAlreadyInactive = newError(ErrInvalidState, "payment card is already inactive")
	ErrCardMustBeInactive  = newError(ErrInvalidState, "payment card must be deactivated before deletion")

	ErrInvalidUserID         = newError(ErrInvalidArgument, "invalid user id")
	ErrInvalidCardID         = newError(ErrInvalidArgument, "invalid card id")
	ErrInvalidName           = newError(ErrInvalidArgument, "name must be 1..50 characters")
	ErrInvalidSurname        = newError(ErrInvalidArgument, "surname must be 1..50 characters")
	ErrInvalidEmail          = newError(ErrInvalidArgument, "email must be a valid address of at most 100 characters")
	ErrInvalidBirthDate      = newError(ErrInvalidArgument, "birth date is required")
	ErrBirthDateInFuture     = newError(ErrInvalidArgument, "birth date must not be in the future")
	ErrInvalidCardNumber     = newError(ErrInvalidArgument, "card number must be 13..19 digits")
	ErrInvalidHolder         = newError(ErrInvalidArgument, "holder must be 1..100 characters")
	ErrExpirationNotInFuture = newError(ErrInvalidArgument, "expiration date must be in the future")
	ErrInvalidNameFilter     = newError(ErrInvalidArgument, "name filter must be 2..50 characters")
	ErrInvalidSurnameFilter  = newError(ErrInvalidArgument, "surname filter must be 2..50 characters")
	ErrInvalidPage           = newError(ErrInvalidArgument, "page must be >= 0 and size 1..100")
	ErrInvalidCacheSpace     = newError(ErrInvalidArgument, "unknown cache space")
	ErrInvalidCacheKind      = newError(ErrInvalidArgument, "cache kind must be users, cards or all")
	ErrInvalidDateFormat     = newError(ErrInvalidArgument, "dates must use the YYYY-MM-DD format")
)

type kindError struct {
	kind    error
	message string
}

func newError(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

func (e *kindError) Error() string { return e.message }

func (e *kindError) Unwrap() error { return e.kind }

// Internal marks an unexpected adapter failure.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
