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

type CreateCardCommand struct {
	Identity       entities.Identity
	UserID         int64
	Number         string
	Holder         string
	ExpirationDate time.Time
}

// CreateCardUseCase issues a card for an active owner. The owner row is locked so two
// concurrent creates cannot both pass the per-user card limit.
type CreateCardUseCase struct {
	Store        ports.Store
	CardsByID    ports.EntryCache[entities.PaymentCard]
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (u CreateCardUseCase) Execute(ctx context.Context, cmd CreateCardCommand) (entities.PaymentCard, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("create card started",
		"event", "accounts_create_card_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", cmd.UserID,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "create card failed",
			"event", "accounts_create_card_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"user_id", cmd.UserID,
			"error", err.Error(),
		)
		return err
	}

	if err := services.RequireOwnerOrAdmin(cmd.UserID, cmd.Identity); err != nil {
		return entities.PaymentCard{}, failed(err)
	}
	if cmd.UserID <= 0 {
		return entities.PaymentCard{}, failed(domainerrors.ErrInvalidUserID)
	}

	now := currentTime(u.Clock)
	number := strings.TrimSpace(cmd.Number)
	holder := strings.TrimSpace(cmd.Holder)

	var created entities.PaymentCard
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		owner, err := tx.Users().LockUser(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if !owner.Active {
			return domainerrors.ErrUserInactive
		}
		count, err := tx.Cards().CountCardsByOwner(ctx, owner.ID)
		if err != nil {
			return err
		}
		if count >= services.MaxCardsPerUser {
			return domainerrors.ErrCardLimitReached
		}
		if err := services.ValidateCardFields(number, holder, cmd.ExpirationDate, now); err != nil {
			return err
		}
		taken, err := tx.Cards().NumberExists(ctx, number, 0)
		if err != nil {
			return err
		}
		if taken {
			return domainerrors.ErrCardNumberTaken
		}
		created, err = tx.Cards().CreateCard(ctx, entities.PaymentCard{
			OwnerID:        owner.ID,
			Number:         number,
			Holder:         holder,
			ExpirationDate: services.DateOnly(cmd.ExpirationDate),
			Active:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		return err
	})
	if err != nil {
		return entities.PaymentCard{}, failed(err)
	}

	application.PutCached(ctx, logger, u.CardsByID, ports.SpaceCardsByID, created.ID, created, created.Version)
	application.EvictCached(ctx, logger, u.CardsByOwner, ports.SpaceCardsByOwner, created.OwnerID, 0)

	logger.Info("create card completed",
		"event", "accounts_create_card_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", created.OwnerID,
		"card_id", created.ID,
	)
	return created, nil
}
