package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "cardvault/contexts/account-management/account-service/application"
	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
)

type UpdateCardCommand struct {
	Identity       entities.Identity
	CardID         int64
	Number         string
	Holder         string
	ExpirationDate time.Time
}

// UpdateCardUseCase edits an active card. Ownership is checked against the stored card.
type UpdateCardUseCase struct {
	Store        ports.Store
	CardsByID    ports.EntryCache[entities.PaymentCard]
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (u UpdateCardUseCase) Execute(ctx context.Context, cmd UpdateCardCommand) (entities.PaymentCard, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("update card started",
		"event", "accounts_update_card_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"card_id", cmd.CardID,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "update card failed",
			"event", "accounts_update_card_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"card_id", cmd.CardID,
			"error", err.Error(),
		)
		return err
	}

	if !cmd.Identity.IsAuthenticated() {
		return entities.PaymentCard{}, failed(domainerrors.ErrIdentityMissing)
	}
	if cmd.CardID <= 0 {
		return entities.PaymentCard{}, failed(domainerrors.ErrInvalidCardID)
	}

	now := currentTime(u.Clock)
	number := strings.TrimSpace(cmd.Number)
	holder := strings.TrimSpace(cmd.Holder)

	var saved entities.PaymentCard
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		card, err := tx.Cards().GetCard(ctx, cmd.CardID)
		if err != nil {
			return err
		}
		if err := services.RequireOwnerOrAdmin(card.OwnerID, cmd.Identity); err != nil {
			return err
		}
		if !card.Active {
			return domainerrors.ErrCardInactive
		}
		if err := services.ValidateCardFields(number, holder, cmd.ExpirationDate, now); err != nil {
			return err
		}
		if number != card.Number {
			taken, err := tx.Cards().NumberExists(ctx, number, card.ID)
			if err != nil {
				return err
			}
			if taken {
				return domainerrors.ErrCardNumberTaken
			}
		}

		card.Number = number
		card.Holder = holder
		card.ExpirationDate = services.DateOnly(cmd.ExpirationDate)
		card.UpdatedAt = now
		saved, err = tx.Cards().SaveCard(ctx, card)
		return err
	})
	if err != nil {
		return entities.PaymentCard{}, failed(err)
	}

	application.PutCached(ctx, logger, u.CardsByID, ports.SpaceCardsByID, saved.ID, saved, saved.Version)
	application.EvictCached(ctx, logger, u.CardsByOwner, ports.SpaceCardsByOwner, saved.OwnerID, 0)

	logger.Info("update card completed",
		"event", "accounts_update_card_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"card_id", saved.ID,
		"version", saved.Version,
	)
	return saved, nil
}
