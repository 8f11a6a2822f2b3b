// Package cache is the process-level cache layer shared by modules.
//
// Entries live in named spaces. Every key carries a generation bumped by each Put and
// Evict, and every space carries an epoch bumped by Clear. A Ticket captured on a miss
// lets a later Fill detect that the key changed while the caller was loading it.
package cache

import (
	"context"
	"errors"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("cache backend closed")

// Entry is a cached payload and the entity version it was written at.
type Entry struct {
	Payload []byte
	Version int64
}

// Ticket identifies the state of one key at lookup time.
type Ticket struct {
	Generation int64
	Epoch      int64
}

// Backend stores raw payloads. Implementations must be safe for concurrent use.
type Backend interface {
	// Lookup returns the entry if present and a ticket for a later Fill.
	Lookup(ctx context.Context, space, key string) (Entry, Ticket, bool, error)
	// Fill stores payload only if the key is unchanged since ticket and version is not
	// older than a remembered tombstone.
	Fill(ctx context.Context, space, key string, ticket Ticket, payload []byte, version int64) (bool, error)
	// Put stores payload unless a newer version is cached or tombstoned.
	Put(ctx context.Context, space, key string, payload []byte, version int64) (bool, error)
	// Evict drops the payload and keeps max(version, current) as a tombstone.
	Evict(ctx context.Context, space, key string, version int64) error
	// Clear drops every payload of space and invalidates outstanding tickets. Each key
	// keeps its version, so an older Put after Clear is still rejected.
	Clear(ctx context.Context, space string) error
	// Flush clears every space the same way.
	Flush(ctx context.Context) error
	Close() error
}
