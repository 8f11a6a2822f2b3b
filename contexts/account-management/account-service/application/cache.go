package application

import (
	"context"
	"log/slog"

	"cardvault/contexts/account-management/account-service/ports"
)

// ReadThrough serves key from cache or loads it and fills the entry with the ticket taken
// before loading. Cache failures degrade to a plain load.
func ReadThrough[T any](
	ctx context.Context,
	logger *slog.Logger,
	cache ports.EntryCache[T],
	space string,
	key int64,
	load func(ctx context.Context) (T, int64, error),
) (T, error) {
	logger = ResolveLogger(logger)
	if cache == nil {
		value, _, err := load(ctx)
		return value, err
	}

	cached, ticket, found, err := cache.Lookup(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed, reading store",
			"event", "accounts_cache_lookup_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"space", space,
			"key", key,
			"error", err.Error(),
		)
		value, _, loadErr := load(ctx)
		return value, loadErr
	}
	if found {
		logger.Debug("cache hit",
			"event", "accounts_cache_hit",
			"module", "account-management/account-service",
			"layer", "application",
			"space", space,
			"key", key,
		)
		return cached, nil
	}

	value, version, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	applied, err := cache.Fill(ctx, key, ticket, value, version)
	if err != nil {
		logger.Warn("cache fill failed",
			"event", "accounts_cache_fill_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"space", space,
			"key", key,
			"error", err.Error(),
		)
	} else if !applied {
		logger.Debug("cache fill skipped, entry changed while loading",
			"event", "accounts_cache_fill_skipped",
			"module", "account-management/account-service",
			"layer", "application",
			"space", space,
			"key", key,
		)
	}
	return value, nil
}

// PutCached writes through after a committed save. Failures are logged only.
func PutCached[T any](
	ctx context.Context,
	logger *slog.Logger,
	cache ports.EntryCache[T],
	space string,
	key int64,
	value T,
	version int64,
) {
	if cache == nil {
		return
	}
	if err := cache.Put(ctx, key, value, version); err != nil {
		ResolveLogger(logger).Warn("cache write-through failed after commit",
			"event", "accounts_cache_put_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"space", space,
			"key", key,
			"version", version,
			"error", err.Error(),
		)
	}
}

// EvictCached drops key after a committed change. Failures are logged only.
func EvictCached[T any](
	ctx context.Context,
	logger *slog.Logger,
	cache ports.EntryCache[T],
	space string,
	key int64,
	version int64,
) {
	if cache == nil {
		return
	}
	if err := cache.Evict(ctx, key, version); err != nil {
		ResolveLogger(logger).Warn("cache eviction failed after commit",
			"event", "accounts_cache_evict_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"space", space,
			"key", key,
			"version", version,
			"error", err.Error(),
		)
	}
}
