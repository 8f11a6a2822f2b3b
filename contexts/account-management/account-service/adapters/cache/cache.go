package cacheadapter

import (
	"context"
	"strconv"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/ports"
	"cardvault/internal/platform/cache"
)

// EntryCache adapts one typed cache space to ports.EntryCache.
type EntryCache[T any] struct {
	typed cache.Typed[T]
}

func NewEntryCache[T any](backend cache.Backend, space string) EntryCache[T] {
	return EntryCache[T]{typed: cache.NewTyped[T](backend, space)}
}

// NewUsersByID, NewCardsByID and NewCardsByOwner bind the module's key spaces.
func NewUsersByID(backend cache.Backend) EntryCache[entities.User] {
	return NewEntryCache[entities.User](backend, ports.SpaceUsersByID)
}

func NewCardsByID(backend cache.Backend) EntryCache[entities.PaymentCard] {
	return NewEntryCache[entities.PaymentCard](backend, ports.SpaceCardsByID)
}

func NewCardsByOwner(backend cache.Backend) EntryCache[[]entities.PaymentCard] {
	return NewEntryCache[[]entities.PaymentCard](backend, ports.SpaceCardsByOwner)
}

func (c EntryCache[T]) Lookup(ctx context.Context, key int64) (T, ports.CacheTicket, bool, error) {
	value, ticket, found, err := c.typed.Lookup(ctx, formatKey(key))
	return value, ports.CacheTicket{Generation: ticket.Generation, Epoch: ticket.Epoch}, found, err
}

func (c EntryCache[T]) Fill(ctx context.Context, key int64, ticket ports.CacheTicket, value T, version int64) (bool, error) {
	return c.typed.Fill(ctx, formatKey(key), cache.Ticket{Generation: ticket.Generation, Epoch: ticket.Epoch}, value, version)
}

func (c EntryCache[T]) Put(ctx context.Context, key int64, value T, version int64) error {
	_, err := c.typed.Put(ctx, formatKey(key), value, version)
	return err
}

func (c EntryCache[T]) Evict(ctx context.Context, key int64, version int64) error {
	return c.typed.Evict(ctx, formatKey(key), version)
}

func (c EntryCache[T]) Clear(ctx context.Context) error {
	return c.typed.Clear(ctx)
}

// Inspector exposes raw entries of the module's spaces.
type Inspector struct {
	backend cache.Backend
}

func NewInspector(backend cache.Backend) Inspector {
	return Inspector{backend: backend}
}

func (i Inspector) Inspect(ctx context.Context, space string, key string) (ports.CacheSnapshot, bool, error) {
	switch space {
	case ports.SpaceUsersByID, ports.SpaceCardsByID, ports.SpaceCardsByOwner:
	default:
		return ports.CacheSnapshot{}, false, domainerrors.ErrInvalidCacheSpace
	}
	entry, _, found, err := i.backend.Lookup(ctx, space, key)
	if err != nil {
		return ports.CacheSnapshot{}, false, domainerrors.Internal(err)
	}
	if !found {
		return ports.CacheSnapshot{}, false, nil
	}
	return ports.CacheSnapshot{
		Space:   space,
		Key:     key,
		Version: entry.Version,
		Value:   entry.Payload,
	}, true, nil
}

func formatKey(key int64) string {
	return strconv.FormatInt(key, 10)
}
