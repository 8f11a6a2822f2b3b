package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Typed stores JSON snapshots of T in one space of a Backend.
type Typed[T any] struct {
	backend Backend
	space   string
}

func NewTyped[T any](backend Backend, space string) Typed[T] {
	return Typed[T]{backend: backend, space: space}
}

func (t Typed[T]) Space() string {
	return t.space
}

// Lookup decodes a hit. A payload that no longer decodes is reported as an error with a
// valid ticket so the caller can reload and refill.
func (t Typed[T]) Lookup(ctx context.Context, key string) (T, Ticket, bool, error) {
	var zero T
	entry, ticket, found, err := t.backend.Lookup(ctx, t.space, key)
	if err != nil || !found {
		return zero, ticket, false, err
	}
	var value T
	if err := json.Unmarshal(entry.Payload, &value); err != nil {
		return zero, ticket, false, fmt.Errorf("decode %s/%s: %w", t.space, key, err)
	}
	return value, ticket, true, nil
}

func (t Typed[T]) Fill(ctx context.Context, key string, ticket Ticket, value T, version int64) (bool, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s/%s: %w", t.space, key, err)
	}
	return t.backend.Fill(ctx, t.space, key, ticket, payload, version)
}

func (t Typed[T]) Put(ctx context.Context, key string, value T, version int64) (bool, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s/%s: %w", t.space, key, err)
	}
	return t.backend.Put(ctx, t.space, key, payload, version)
}

func (t Typed[T]) Evict(ctx context.Context, key string, version int64) error {
	return t.backend.Evict(ctx, t.space, key, version)
}

func (t Typed[T]) Clear(ctx context.Context) error {
	return t.backend.Clear(ctx, t.space)
}
