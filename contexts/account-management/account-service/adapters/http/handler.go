package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "cardvault/contexts/account-management/account-service/application"
	"cardvault/contexts/account-management/account-service/application/commands"
	"cardvault/contexts/account-management/account-service/application/queries"
	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	CreateUser       commands.CreateUserUseCase
	UpdateUser       commands.UpdateUserUseCase
	ChangeUserStatus commands.ChangeUserStatusUseCase
	DeleteUser       commands.DeleteUserUseCase
	GetUser          queries.GetUserUseCase
	GetUserByEmail   queries.GetUserByEmailUseCase
	ListUsers        queries.ListUsersUseCase

	CreateCard       commands.CreateCardUseCase
	UpdateCard       commands.UpdateCardUseCase
	ChangeCardStatus commands.ChangeCardStatusUseCase
	DeleteCard       commands.DeleteCardUseCase
	GetCard          queries.GetCardUseCase
	ListUserCards    queries.ListUserCardsUseCase
	ListCards        queries.ListCardsUseCase

	InspectCache queries.InspectCacheUseCase
	ClearCache   commands.ClearCacheUseCase

	Logger *slog.Logger
}

func (h Handler) CreateUserHandler(
	ctx context.Context,
	identity entities.Identity,
	request httptransport.UserRequest,
) (httptransport.UserResponse, error) {
	h.received(ctx, "create_user", identity)
	birthDate, err := parseDate(request.BirthDate)
	if err != nil {
		h.failed(ctx, "create_user", identity, err)
		return httptransport.UserResponse{}, err
	}
	user, err := h.CreateUser.Execute(ctx, commands.CreateUserCommand{
		Identity:  identity,
		Name:      request.Name,
		Surname:   request.Surname,
		BirthDate: birthDate,
		Email:     request.Email,
	})
	if err != nil {
		h.failed(ctx, "create_user", identity, err)
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) UpdateUserHandler(
	ctx context.Context,
	identity entities.Identity,
	userID int64,
	request httptransport.UserRequest,
) (httptransport.UserResponse, error) {
	h.received(ctx, "update_user", identity, "user_id", userID)
	birthDate, err := parseDate(request.BirthDate)
	if err != nil {
		h.failed(ctx, "update_user", identity, err, "user_id", userID)
		return httptransport.UserResponse{}, err
	}
	user, err := h.UpdateUser.Execute(ctx, commands.UpdateUserCommand{
		Identity:  identity,
		UserID:    userID,
		Name:      request.Name,
		Surname:   request.Surname,
		BirthDate: birthDate,
		Email:     request.Email,
	})
	if err != nil {
		h.failed(ctx, "update_user", identity, err, "user_id", userID)
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// SetUserActiveHandler serves both activate and deactivate.
func (h Handler) SetUserActiveHandler(
	ctx context.Context,
	identity entities.Identity,
	userID int64,
	active bool,
) (httptransport.UserResponse, error) {
	h.received(ctx, "change_user_status", identity, "user_id", userID, "active", active)
	user, err := h.ChangeUserStatus.Execute(ctx, commands.ChangeUserStatusCommand{
		Identity: identity,
		UserID:   userID,
		Active:   active,
	})
	if err != nil {
		h.failed(ctx, "change_user_status", identity, err, "user_id", userID)
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) DeleteUserHandler(
	ctx context.Context,
	identity entities.Identity,
	userID int64,
) (httptransport.DeleteUserResponse, error) {
	h.received(ctx, "delete_user", identity, "user_id", userID)
	result, err := h.DeleteUser.Execute(ctx, commands.DeleteUserCommand{Identity: identity, UserID: userID})
	if err != nil {
		h.failed(ctx, "delete_user", identity, err, "user_id", userID)
		return httptransport.DeleteUserResponse{}, err
	}
	return httptransport.DeleteUserResponse{
		UserID:         result.UserID,
		DeletedCardIDs: result.DeletedCardIDs,
	}, nil
}

func (h Handler) GetUserHandler(
	ctx context.Context,
	identity entities.Identity,
	userID int64,
) (httptransport.UserResponse, error) {
	h.received(ctx, "get_user", identity, "user_id", userID)
	user, err := h.GetUser.Execute(ctx, queries.GetUserQuery{Identity: identity, UserID: userID})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) GetUserByEmailHandler(
	ctx context.Context,
	identity entities.Identity,
	email string,
) (httptransport.UserResponse, error) {
	h.received(ctx, "get_user_by_email", identity)
	user, err := h.GetUserByEmail.Execute(ctx, queries.GetUserByEmailQuery{Identity: identity, Email: email})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) ListUsersHandler(
	ctx context.Context,
	identity entities.Identity,
	request httptransport.ListUsersRequest,
) (httptransport.UserPageResponse, error) {
	h.received(ctx, "list_users", identity, "page", request.Page, "size", request.Size)
	page, err := h.ListUsers.Execute(ctx, queries.ListUsersQuery{
		Identity: identity,
		Name:     request.Name,
		Surname:  request.Surname,
		Page:     entities.PageRequest{Page: request.Page, Size: request.Size},
	})
	if err != nil {
		return httptransport.UserPageResponse{}, err
	}
	items := make([]httptransport.UserResponse, 0, len(page.Items))
	for _, user := range page.Items {
		items = append(items, toUserResponse(user))
	}
	return httptransport.UserPageResponse{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}, nil
}

func (h Handler) CreateCardHandler(
	ctx context.Context,
	identity entities.Identity,
	userID int64,
	request httptransport.CardRequest,
) (httptransport.CardResponse, error) {
	h.received(ctx, "create_card", identity, "user_id", userID)
	expiration, err := parseDate(request.ExpirationDate)
	if err != nil {
		h.failed(ctx, "create_card", identity, err, "user_id", userID)
		return httptransport.CardResponse{}, err
	}
	card, err := h.CreateCard.Execute(ctx, commands.CreateCardCommand{
		Identity:       identity,
		UserID:         userID,
		Number:         request.Number,
		Holder:         request.Holder,
		ExpirationDate: expiration,
	})
	if err != nil {
		h.failed(ctx, "create_card", identity, err, "user_id", userID)
		return httptransport.CardResponse{}, err
	}
	return toCardResponse(card), nil
}

func (h Handler) UpdateCardHandler(
	ctx context.Context,
	identity entities.Identity,
	cardID int64,
	request httptransport.CardRequest,
) (httptransport.CardResponse, error) {
	h.received(ctx, "update_card", identity, "card_id", cardID)
	expiration, err := parseDate(request.ExpirationDate)
	if err != nil {
		h.failed(ctx, "update_card", identity, err, "card_id", cardID)
		return httptransport.CardResponse{}, err
	}
	card, err := h.UpdateCard.Execute(ctx, commands.UpdateCardCommand{
		Identity:       identity,
		CardID:         cardID,
		Number:         request.Number,
		Holder:         request.Holder,
		ExpirationDate: expiration,
	})
	if err != nil {
		h.failed(ctx, "update_card", identity, err, "card_id", cardID)
		return httptransport.CardResponse{}, err
	}
	return toCardResponse(card), nil
}

// SetCardActiveHandler serves both activate and deactivate.
func (h Handler) SetCardActiveHandler(
	ctx context.Context,
	identity entities.Identity,
	cardID int64,
	active bool,
) (httptransport.CardResponse, error) {
	h.received(ctx, "change_card_status", identity, "card_id", cardID, "active", active)
	card, err := h.ChangeCardStatus.Execute(ctx, commands.ChangeCardStatusCommand{
		Identity: identity,
		CardID:   cardID,
		Active:   active,
	})
	if err != nil {
		h.failed(ctx, "change_card_status", identity, err, "card_id", cardID)
		return httptransport.CardResponse{}, err
	}
	return toCardResponse(card), nil
}

func (h Handler) DeleteCardHandler(ctx context.Context, identity entities.Identity, cardID int64) error {
	h.received(ctx, "delete_card", identity, "card_id", cardID)
	if err := h.DeleteCard.Execute(ctx, commands.DeleteCardCommand{Identity: identity, CardID: cardID}); err != nil {
		h.failed(ctx, "delete_card", identity, err, "card_id", cardID)
		return err
	}
	return nil
}

func (h Handler) GetCardHandler(
	ctx context.Context,
	identity entities.Identity,
	cardID int64,
) (httptransport.CardResponse, error) {
	h.received(ctx, "get_card", identity, "card_id", cardID)
	card, err := h.GetCard.Execute(ctx, queries.GetCardQuery{Identity: identity, CardID: cardID})
	if err != nil {
		return httptransport.CardResponse{}, err
	}
	return toCardResponse(card), nil
}

func (h Handler) ListUserCardsHandler(
	ctx context.Context,
	identity entities.Identity,
	userID int64,
) (httptransport.CardListResponse, error) {
	h.received(ctx, "list_user_cards", identity, "user_id", userID)
	cards, err := h.ListUserCards.Execute(ctx, queries.ListUserCardsQuery{Identity: identity, UserID: userID})
	if err != nil {
		return httptransport.CardListResponse{}, err
	}
	items := make([]httptransport.CardResponse, 0, len(cards))
	for _, card := range cards {
		items = append(items, toCardResponse(card))
	}
	return httptransport.CardListResponse{UserID: userID, Cards: items}, nil
}

func (h Handler) ListCardsHandler(
	ctx context.Context,
	identity entities.Identity,
	request httptransport.PageRequest,
) (httptransport.CardPageResponse, error) {
	h.received(ctx, "list_cards", identity, "page", request.Page, "size", request.Size)
	page, err := h.ListCards.Execute(ctx, queries.ListCardsQuery{
		Identity: identity,
		Page:     entities.PageRequest{Page: request.Page, Size: request.Size},
	})
	if err != nil {
		return httptransport.CardPageResponse{}, err
	}
	items := make([]httptransport.CardResponse, 0, len(page.Items))
	for _, card := range page.Items {
		items = append(items, toCardResponse(card))
	}
	return httptransport.CardPageResponse{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}, nil
}

func (h Handler) InspectCacheHandler(
	ctx context.Context,
	identity entities.Identity,
	space string,
	key string,
) (httptransport.CacheEntryResponse, error) {
	h.received(ctx, "inspect_cache", identity, "space", space, "key", key)
	snapshot, err := h.InspectCache.Execute(ctx, queries.InspectCacheQuery{
		Identity: identity,
		Space:    space,
		Key:      key,
	})
	if err != nil {
		return httptransport.CacheEntryResponse{}, err
	}
	return httptransport.CacheEntryResponse{
		Space:   snapshot.Space,
		Key:     snapshot.Key,
		Version: snapshot.Version,
		Value:   snapshot.Value,
	}, nil
}

func (h Handler) ClearCacheHandler(
	ctx context.Context,
	identity entities.Identity,
	kind string,
) (httptransport.ClearCacheResponse, error) {
	h.received(ctx, "clear_cache", identity, "kind", kind)
	cleared, err := h.ClearCache.Execute(ctx, commands.ClearCacheCommand{Identity: identity, Kind: kind})
	if err != nil {
		h.failed(ctx, "clear_cache", identity, err, "kind", kind)
		return httptransport.ClearCacheResponse{}, err
	}
	return httptransport.ClearCacheResponse{Kind: strings.ToLower(strings.TrimSpace(kind)), Cleared: cleared}, nil
}

func (h Handler) received(ctx context.Context, operation string, identity entities.Identity, attrs ...any) {
	args := append([]any{
		"event", "accounts_http_" + operation + "_received",
		"module", "account-management/account-service",
		"layer", "transport",
		"actor_id", identity.SubjectID,
	}, attrs...)
	application.ResolveLogger(h.Logger).DebugContext(ctx, "http request received", args...)
}

func (h Handler) failed(ctx context.Context, operation string, identity entities.Identity, err error, attrs ...any) {
	args := append([]any{
		"event", "accounts_http_" + operation + "_failed",
		"module", "account-management/account-service",
		"layer", "transport",
		"actor_id", identity.SubjectID,
	}, attrs...)
	args = append(args, "error", err.Error())
	application.ResolveLogger(h.Logger).Log(ctx, application.FailureLevel(err), "http request failed", args...)
}

func parseDate(raw string) (time.Time, error) {
	value, err := time.Parse(httptransport.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, domainerrors.ErrInvalidDateFormat
	}
	return value, nil
}

func toUserResponse(user entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Surname:   user.Surname,
		BirthDate: user.BirthDate.Format(httptransport.DateLayout),
		Email:     user.Email,
		Active:    user.Active,
		Version:   user.Version,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toCardResponse(card entities.PaymentCard) httptransport.CardResponse {
	return httptransport.CardResponse{
		ID:             card.ID,
		UserID:         card.OwnerID,
		Number:         card.Number,
		Holder:         card.Holder,
		ExpirationDate: card.ExpirationDate.Format(httptransport.DateLayout),
		Active:         card.Active,
		Version:        card.Version,
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
	}
}
