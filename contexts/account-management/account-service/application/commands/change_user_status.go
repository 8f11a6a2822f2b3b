package commands

import (
	"context"
	"log/slog"

	application "cardvault/contexts/account-management/account-service/application"
	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
)

type ChangeUserStatusCommand struct {
	Identity entities.Identity
	UserID   int64
	Active   bool
}

// ChangeUserStatusUseCase activates or deactivates a user. Admin only; a transition to
// the current state is rejected. The user's cards are left untouched.
type ChangeUserStatusUseCase struct {
	Store     ports.Store
	UsersByID ports.EntryCache[entities.User]
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u ChangeUserStatusUseCase) Execute(ctx context.Context, cmd ChangeUserStatusCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("change user status started",
		"event", "accounts_change_user_status_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", cmd.UserID,
		"active", cmd.Active,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "change user status failed",
			"event", "accounts_change_user_status_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"user_id", cmd.UserID,
			"active", cmd.Active,
			"error", err.Error(),
		)
		return err
	}

	if err := services.RequireAdmin(cmd.Identity); err != nil {
		return entities.User{}, failed(err)
	}
	if cmd.UserID <= 0 {
		return entities.User{}, failed(domainerrors.ErrInvalidUserID)
	}

	now := currentTime(u.Clock)
	var saved entities.User
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		user, err := tx.Users().GetUser(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if user.Active == cmd.Active {
			if cmd.Active {
				return domainerrors.ErrUserAlreadyActive
			}
			return domainerrors.ErrUserAlreadyInactive
		}
		user.Active = cmd.Active
		user.UpdatedAt = now
		saved, err = tx.Users().SaveUser(ctx, user)
		return err
	})
	if err != nil {
		return entities.User{}, failed(err)
	}

	application.EvictCached(ctx, logger, u.UsersByID, ports.SpaceUsersByID, saved.ID, saved.Version)

	logger.Info("change user status completed",
		"event", "accounts_change_user_status_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", saved.ID,
		"active", saved.Active,
	)
	return saved, nil
}
