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

type DeleteCardCommand struct {
	Identity entities.Identity
	CardID   int64
}

// DeleteCardUseCase removes one card. Admin only; DeletePolicy limits which states qualify.
type DeleteCardUseCase struct {
	Store        ports.Store
	CardsByID    ports.EntryCache[entities.PaymentCard]
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	DeletePolicy services.CardDeletePolicy
	Logger       *slog.Logger
}

func (u DeleteCardUseCase) Execute(ctx context.Context, cmd DeleteCardCommand) error {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("delete card started",
		"event", "accounts_delete_card_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"card_id", cmd.CardID,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "delete card failed",
			"event", "accounts_delete_card_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"card_id", cmd.CardID,
			"error", err.Error(),
		)
		return err
	}

	if err := services.RequireAdmin(cmd.Identity); err != nil {
		return failed(err)
	}
	if cmd.CardID <= 0 {
		return failed(domainerrors.ErrInvalidCardID)
	}

	var card entities.PaymentCard
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		var err error
		card, err = tx.Cards().GetCard(ctx, cmd.CardID)
		if err != nil {
			return err
		}
		if err := u.DeletePolicy.CheckDeletable(card); err != nil {
			return err
		}
		return tx.Cards().DeleteCard(ctx, card.ID)
	})
	if err != nil {
		return failed(err)
	}

	application.EvictCached(ctx, logger, u.CardsByID, ports.SpaceCardsByID, card.ID, card.Version+1)
	application.EvictCached(ctx, logger, u.CardsByOwner, ports.SpaceCardsByOwner, card.OwnerID, 0)

	logger.Info("delete card completed",
		"event", "accounts_delete_card_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"card_id", card.ID,
		"user_id", card.OwnerID,
	)
	return nil
}
