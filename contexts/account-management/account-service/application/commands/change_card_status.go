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

type ChangeCardStatusCommand struct {
	Identity entities.Identity
	CardID   int64
	Active   bool
}

// ChangeCardStatusUseCase activates or deactivates a card. Admin only.
type ChangeCardStatusUseCase struct {
	Store        ports.Store
	CardsByID    ports.EntryCache[entities.PaymentCard]
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (u ChangeCardStatusUseCase) Execute(ctx context.Context, cmd ChangeCardStatusCommand) (entities.PaymentCard, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("change card status started",
		"event", "accounts_change_card_status_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"card_id", cmd.CardID,
		"active", cmd.Active,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "change card status failed",
			"event", "accounts_change_card_status_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"card_id", cmd.CardID,
			"active", cmd.Active,
			"error", err.Error(),
		)
		return err
	}

	if err := services.RequireAdmin(cmd.Identity); err != nil {
		return entities.PaymentCard{}, failed(err)
	}
	if cmd.CardID <= 0 {
		return entities.PaymentCard{}, failed(domainerrors.ErrInvalidCardID)
	}

	now := currentTime(u.Clock)
	var saved entities.PaymentCard
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		card, err := tx.Cards().GetCard(ctx, cmd.CardID)
		if err != nil {
			return err
		}
		if card.Active == cmd.Active {
			if cmd.Active {
				return domainerrors.ErrCardAlreadyActive
			}
			return domainerrors.ErrCardAlreadyInactive
		}
		card.Active = cmd.Active
		card.UpdatedAt = now
		saved, err = tx.Cards().SaveCard(ctx, card)
		return err
	})
	if err != nil {
		return entities.PaymentCard{}, failed(err)
	}

	application.EvictCached(ctx, logger, u.CardsByID, ports.SpaceCardsByID, saved.ID, saved.Version)
	application.EvictCached(ctx, logger, u.CardsByOwner, ports.SpaceCardsByOwner, saved.OwnerID, 0)

	logger.Info("change card status completed",
		"event", "accounts_change_card_status_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"card_id", saved.ID,
		"active", saved.Active,
	)
	return saved, nil
}
