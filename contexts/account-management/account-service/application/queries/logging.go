package queries

import (
	"context"
	"log/slog"

	application "cardvault/contexts/account-management/account-service/application"
	"cardvault/contexts/account-management/account-service/domain/entities"
)

func logFailure(
	ctx context.Context,
	logger *slog.Logger,
	msg string,
	event string,
	identity entities.Identity,
	err error,
	attrs ...any,
) {
	args := append([]any{
		"event", event,
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", identity.SubjectID,
	}, attrs...)
	args = append(args, "error", err.Error())
	application.ResolveLogger(logger).Log(ctx, application.FailureLevel(err), msg, args...)
}
