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

type DeleteUserCommand struct {
	Identity entities.Identity
	UserID   int64
}

// DeleteUserResult lists the cards removed together with the user.
type DeleteUserResult struct {
	UserID         int64
	DeletedCardIDs []int64
}

// DeleteUserUseCase removes a user and all of their cards in one transaction. Admin only.
// The user row is locked first so a concurrent card create commits before the cards are
// collected or finds the user gone.
type DeleteUserUseCase struct {
	Store        ports.Store
	UsersByID    ports.EntryCache[entities.User]
	CardsByID    ports.EntryCache[entities.PaymentCard]
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	Logger       *slog.Logger
}

func (u DeleteUserUseCase) Execute(ctx context.Context, cmd DeleteUserCommand) (DeleteUserResult, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("delete user started",
		"event", "accounts_delete_user_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", cmd.UserID,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "delete user failed",
			"event", "accounts_delete_user_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"user_id", cmd.UserID,
			"error", err.Error(),
		)
		return err
	}

	if err := services.RequireAdmin(cmd.Identity); err != nil {
		return DeleteUserResult{}, failed(err)
	}
	if cmd.UserID <= 0 {
		return DeleteUserResult{}, failed(domainerrors.ErrInvalidUserID)
	}

	var (
		user    entities.User
		removed []entities.PaymentCard
	)
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		var err error
		user, err = tx.Users().LockUser(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		removed, err = tx.Cards().DeleteCardsByOwner(ctx, user.ID)
		if err != nil {
			return err
		}
		return tx.Users().DeleteUser(ctx, user.ID)
	})
	if err != nil {
		return DeleteUserResult{}, failed(err)
	}

	// Tombstones one version past the deleted rows reject any in-flight older write.
	application.EvictCached(ctx, logger, u.UsersByID, ports.SpaceUsersByID, user.ID, user.Version+1)
	application.EvictCached(ctx, logger, u.CardsByOwner, ports.SpaceCardsByOwner, user.ID, 0)
	result := DeleteUserResult{UserID: user.ID, DeletedCardIDs: make([]int64, 0, len(removed))}
	for _, card := range removed {
		application.EvictCached(ctx, logger, u.CardsByID, ports.SpaceCardsByID, card.ID, card.Version+1)
		result.DeletedCardIDs = append(result.DeletedCardIDs, card.ID)
	}

	logger.Info("delete user completed",
		"event", "accounts_delete_user_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", user.ID,
		"deleted_cards", len(removed),
	)
	return result, nil
}
