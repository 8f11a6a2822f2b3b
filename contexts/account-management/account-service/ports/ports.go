package ports

import (
	"context"
	"encoding/json"
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Credential is the raw caller material extracted by a transport.
type Credential struct {
	BearerToken string
	UserID      string
	Roles       string
}

// Authenticator resolves a credential into an identity or an Unauthenticated error.
type Authenticator interface {
	Authenticate(ctx context.Context, credential Credential) (entities.Identity, error)
}

// UserFilter narrows ListUsers. Name and Surname match case-insensitive substrings.
type UserFilter struct {
	Name    string
	Surname string
	Page    entities.PageRequest
}

// UserRepository is only reachable through Tx so every call shares one transaction.
type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (entities.User, error)
	// LockUser reads the user and holds a row lock until the transaction ends.
	LockUser(ctx context.Context, userID int64) (entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error)
	ListUsers(ctx context.Context, filter UserFilter) (entities.Page[entities.User], error)
	// CreateUser assigns ID and sets Version to 1.
	CreateUser(ctx context.Context, user entities.User) (entities.User, error)
	// SaveUser persists user when its Version still matches and returns it with Version+1.
	SaveUser(ctx context.Context, user entities.User) (entities.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

// CardRepository mirrors UserRepository for payment cards.
type CardRepository interface {
	GetCard(ctx context.Context, cardID int64) (entities.PaymentCard, error)
	ListCardsByOwner(ctx context.Context, ownerID int64) ([]entities.PaymentCard, error)
	CountCardsByOwner(ctx context.Context, ownerID int64) (int64, error)
	NumberExists(ctx context.Context, number string, excludeCardID int64) (bool, error)
	ListCards(ctx context.Context, page entities.PageRequest) (entities.Page[entities.PaymentCard], error)
	CreateCard(ctx context.Context, card entities.PaymentCard) (entities.PaymentCard, error)
	SaveCard(ctx context.Context, card entities.PaymentCard) (entities.PaymentCard, error)
	DeleteCard(ctx context.Context, cardID int64) error
	// DeleteCardsByOwner removes every card of ownerID and returns what was removed.
	DeleteCardsByOwner(ctx context.Context, ownerID int64) ([]entities.PaymentCard, error)
}

// Tx exposes repositories bound to one open transaction.
type Tx interface {
	Users() UserRepository
	Cards() CardRepository
}

// Store runs fn in a transaction; fn returning an error rolls everything back.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// Cache spaces. Users and cards are keyed by id, card collections by owner id.
const (
	SpaceUsersByID    = "users:id"
	SpaceCardsByID    = "cards:id"
	SpaceCardsByOwner = "cards:owner"
)

// CacheTicket is taken on a miss and must be presented to Fill.
type CacheTicket struct {
	Generation int64
	Epoch      int64
}

// EntryCache is one key space of the cache layer.
//
// Fill stores a value loaded after a miss and is rejected when any Put, Evict or Clear
// touched the key since the ticket was issued. Put is write-through and is ignored when
// a newer version is already cached or tombstoned. Evict drops the value and remembers
// version so older writes cannot resurrect it.
type EntryCache[T any] interface {
	Lookup(ctx context.Context, key int64) (T, CacheTicket, bool, error)
	Fill(ctx context.Context, key int64, ticket CacheTicket, value T, version int64) (bool, error)
	Put(ctx context.Context, key int64, value T, version int64) error
	Evict(ctx context.Context, key int64, version int64) error
	Clear(ctx context.Context) error
}

// CacheSnapshot is the raw content of one cache entry.
type CacheSnapshot struct {
	Space   string
	Key     string
	Version int64
	Value   json.RawMessage
}

// CacheInspector reads raw entries for administration.
type CacheInspector interface {
	Inspect(ctx context.Context, space string, key string) (CacheSnapshot, bool, error)
}
