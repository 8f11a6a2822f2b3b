package queries

import (
	"context"
	"log/slog"
	"strings"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
)

type InspectCacheQuery struct {
	Identity entities.Identity
	Space    string
	Key      string
}

// InspectCacheUseCase returns the raw cached value of one entry. Admin only.
type InspectCacheUseCase struct {
	Inspector ports.CacheInspector
	Logger    *slog.Logger
}

func (u InspectCacheUseCase) Execute(ctx context.Context, query InspectCacheQuery) (ports.CacheSnapshot, error) {
	if err := services.RequireAdmin(query.Identity); err != nil {
		return ports.CacheSnapshot{}, err
	}
	key := strings.TrimSpace(query.Key)
	if u.Inspector == nil {
		return ports.CacheSnapshot{}, domainerrors.ErrCacheEntryNotFound
	}

	snapshot, found, err := u.Inspector.Inspect(ctx, strings.TrimSpace(query.Space), key)
	if err != nil {
		logFailure(ctx, u.Logger, "cache inspect failed", "accounts_cache_inspect_failed", query.Identity, err,
			"space", query.Space,
			"key", key,
		)
		return ports.CacheSnapshot{}, err
	}
	if !found {
		return ports.CacheSnapshot{}, domainerrors.ErrCacheEntryNotFound
	}
	return snapshot, nil
}
