package commands

import (
	"context"
	"log/slog"
	"strings"

	application "cardvault/contexts/account-management/account-service/application"
	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
)

const (
	CacheKindUsers = "users"
	CacheKindCards = "cards"
	CacheKindAll   = "all"
)

type ClearCacheCommand struct {
	Identity entities.Identity
	Kind     string
}

// ClearCacheUseCase empties cache spaces by kind. Admin only. Unlike write paths, cache
// errors are returned here since clearing is the whole point of the call.
type ClearCacheUseCase struct {
	UsersByID    ports.EntryCache[entities.User]
	CardsByID    ports.EntryCache[entities.PaymentCard]
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	Logger       *slog.Logger
}

type clearer interface {
	Clear(ctx context.Context) error
}

func (u ClearCacheUseCase) Execute(ctx context.Context, cmd ClearCacheCommand) ([]string, error) {
	logger := application.ResolveLogger(u.Logger)
	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "cache clear failed",
			"event", "accounts_cache_clear_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"kind", cmd.Kind,
			"error", err.Error(),
		)
		return err
	}
	if err := services.RequireAdmin(cmd.Identity); err != nil {
		return nil, failed(err)
	}

	type target struct {
		space string
		cache clearer
	}
	var targets []target
	users := target{space: ports.SpaceUsersByID, cache: u.UsersByID}
	cards := target{space: ports.SpaceCardsByID, cache: u.CardsByID}
	owners := target{space: ports.SpaceCardsByOwner, cache: u.CardsByOwner}
	switch strings.ToLower(strings.TrimSpace(cmd.Kind)) {
	case CacheKindUsers:
		targets = []target{users}
	case CacheKindCards:
		targets = []target{cards, owners}
	case CacheKindAll:
		targets = []target{users, cards, owners}
	default:
		return nil, failed(domainerrors.ErrInvalidCacheKind)
	}

	cleared := make([]string, 0, len(targets))
	for _, t := range targets {
		if t.cache == nil {
			continue
		}
		if err := t.cache.Clear(ctx); err != nil {
			logger.Error("cache clear failed",
				"event", "accounts_cache_clear_failed",
				"module", "account-management/account-service",
				"layer", "application",
				"actor_id", cmd.Identity.SubjectID,
				"space", t.space,
				"error", err.Error(),
			)
			return cleared, domainerrors.Internal(err)
		}
		cleared = append(cleared, t.space)
	}

	logger.Info("cache cleared",
		"event", "accounts_cache_cleared",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"spaces", cleared,
	)
	return cleared, nil
}
