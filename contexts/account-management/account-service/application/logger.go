package application

import (
	"errors"
	"log/slog"

	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
)

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// FailureLevel logs rejected requests at Warn and everything unexpected at Error.
func FailureLevel(err error) slog.Level {
	for _, kind := range []error{
		domainerrors.ErrUnauthenticated,
		domainerrors.ErrForbidden,
		domainerrors.ErrNotFound,
		domainerrors.ErrConflict,
		domainerrors.ErrInvalidArgument,
		domainerrors.ErrInvalidState,
	} {
		if errors.Is(err, kind) {
			return slog.LevelWarn
		}
	}
	return slog.LevelError
}
