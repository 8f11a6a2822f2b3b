package queries

import (
	"context"
	"log/slog"

	application "cardvault/contexts/account-management/account-service/application"
	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
)

type GetCardQuery struct {
	Identity entities.Identity
	CardID   int64
}

// GetCardUseCase reads the card first, then checks ownership against its owner.
type GetCardUseCase struct {
	Store     ports.Store
	CardsByID ports.EntryCache[entities.PaymentCard]
	Logger    *slog.Logger
}

func (u GetCardUseCase) Execute(ctx context.Context, query GetCardQuery) (entities.PaymentCard, error) {
	if !query.Identity.IsAuthenticated() {
		return entities.PaymentCard{}, domainerrors.ErrIdentityMissing
	}
	if query.CardID <= 0 {
		return entities.PaymentCard{}, domainerrors.ErrInvalidCardID
	}

	card, err := application.ReadThrough(ctx, u.Logger, u.CardsByID, ports.SpaceCardsByID, query.CardID,
		func(ctx context.Context) (entities.PaymentCard, int64, error) {
			var card entities.PaymentCard
			err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
				var err error
				card, err = tx.Cards().GetCard(ctx, query.CardID)
				return err
			})
			return card, card.Version, err
		})
	if err == nil {
		err = services.RequireOwnerOrAdmin(card.OwnerID, query.Identity)
	}
	if err != nil {
		logFailure(ctx, u.Logger, "get card failed", "accounts_get_card_failed", query.Identity, err,
			"card_id", query.CardID)
		return entities.PaymentCard{}, err
	}
	return card, nil
}

type ListUserCardsQuery struct {
	Identity entities.Identity
	UserID   int64
}

// ListUserCardsUseCase serves all cards of one owner through the cards:owner cache.
// A missing owner is NotFound; an owner without cards yields an empty slice.
type ListUserCardsUseCase struct {
	Store        ports.Store
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	Logger       *slog.Logger
}

func (u ListUserCardsUseCase) Execute(ctx context.Context, query ListUserCardsQuery) ([]entities.PaymentCard, error) {
	if err := services.RequireOwnerOrAdmin(query.UserID, query.Identity); err != nil {
		return nil, err
	}
	if query.UserID <= 0 {
		return nil, domainerrors.ErrInvalidUserID
	}

	cards, err := application.ReadThrough(ctx, u.Logger, u.CardsByOwner, ports.SpaceCardsByOwner, query.UserID,
		func(ctx context.Context) ([]entities.PaymentCard, int64, error) {
			var cards []entities.PaymentCard
			err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
				if _, err := tx.Users().GetUser(ctx, query.UserID); err != nil {
					return err
				}
				var err error
				cards, err = tx.Cards().ListCardsByOwner(ctx, query.UserID)
				return err
			})
			return cards, 0, err
		})
	if err != nil {
		logFailure(ctx, u.Logger, "list user cards failed", "accounts_list_user_cards_failed", query.Identity, err,
			"user_id", query.UserID)
		return nil, err
	}
	if cards == nil {
		cards = []entities.PaymentCard{}
	}
	return cards, nil
}

type ListCardsQuery struct {
	Identity entities.Identity
	Page     entities.PageRequest
}

// ListCardsUseCase pages through every card. Admin only.
type ListCardsUseCase struct {
	Store  ports.Store
	Logger *slog.Logger
}

func (u ListCardsUseCase) Execute(ctx context.Context, query ListCardsQuery) (entities.Page[entities.PaymentCard], error) {
	if err := services.RequireAdmin(query.Identity); err != nil {
		return entities.Page[entities.PaymentCard]{}, err
	}
	page, err := services.ValidatePage(query.Page)
	if err != nil {
		return entities.Page[entities.PaymentCard]{}, err
	}

	var result entities.Page[entities.PaymentCard]
	err = u.Store.Atomically(ctx, func(tx ports.Tx) error {
		var err error
		result, err = tx.Cards().ListCards(ctx, page)
		return err
	})
	if err != nil {
		logFailure(ctx, u.Logger, "list cards failed", "accounts_list_cards_failed", query.Identity, err)
		return entities.Page[entities.PaymentCard]{}, err
	}
	return result, nil
}
