package accounts

import (
	"log/slog"

	authadapter "cardvault/contexts/account-management/account-service/adapters/auth"
	cacheadapter "cardvault/contexts/account-management/account-service/adapters/cache"
	httpadapter "cardvault/contexts/account-management/account-service/adapters/http"
	"cardvault/contexts/account-management/account-service/adapters/memory"
	"cardvault/contexts/account-management/account-service/application/commands"
	"cardvault/contexts/account-management/account-service/application/queries"
	"cardvault/contexts/account-management/account-service/domain/entities"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
	"cardvault/internal/platform/cache"
)

// Module is the account-service composition root exposed to runtime wiring.
type Module struct {
	Handler       httpadapter.Handler
	Authenticator ports.Authenticator
	Store         *memory.Store
}

// Caches groups the module's cache spaces. Nil members disable caching for that space.
type Caches struct {
	UsersByID    ports.EntryCache[entities.User]
	CardsByID    ports.EntryCache[entities.PaymentCard]
	CardsByOwner ports.EntryCache[[]entities.PaymentCard]
	Inspector    ports.CacheInspector
}

// NewCaches binds every module space to one backend.
func NewCaches(backend cache.Backend) Caches {
	return Caches{
		UsersByID:    cacheadapter.NewUsersByID(backend),
		CardsByID:    cacheadapter.NewCardsByID(backend),
		CardsByOwner: cacheadapter.NewCardsByOwner(backend),
		Inspector:    cacheadapter.NewInspector(backend),
	}
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Store            ports.Store
	Caches           Caches
	Authenticator    ports.Authenticator
	Clock            ports.Clock
	CardDeletePolicy services.CardDeletePolicy
	Logger           *slog.Logger
}

// NewModule wires use cases and the transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	caches := deps.Caches
	policy := deps.CardDeletePolicy
	if policy == "" {
		policy = services.CardDeleteAny
	}

	handler := httpadapter.Handler{
		CreateUser: commands.CreateUserUseCase{
			Store:     deps.Store,
			UsersByID: caches.UsersByID,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		UpdateUser: commands.UpdateUserUseCase{
			Store:     deps.Store,
			UsersByID: caches.UsersByID,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		ChangeUserStatus: commands.ChangeUserStatusUseCase{
			Store:     deps.Store,
			UsersByID: caches.UsersByID,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		DeleteUser: commands.DeleteUserUseCase{
			Store:        deps.Store,
			UsersByID:    caches.UsersByID,
			CardsByID:    caches.CardsByID,
			CardsByOwner: caches.CardsByOwner,
			Logger:       deps.Logger,
		},
		GetUser: queries.GetUserUseCase{
			Store:     deps.Store,
			UsersByID: caches.UsersByID,
			Logger:    deps.Logger,
		},
		GetUserByEmail: queries.GetUserByEmailUseCase{Store: deps.Store, Logger: deps.Logger},
		ListUsers:      queries.ListUsersUseCase{Store: deps.Store, Logger: deps.Logger},

		CreateCard: commands.CreateCardUseCase{
			Store:        deps.Store,
			CardsByID:    caches.CardsByID,
			CardsByOwner: caches.CardsByOwner,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		UpdateCard: commands.UpdateCardUseCase{
			Store:        deps.Store,
			CardsByID:    caches.CardsByID,
			CardsByOwner: caches.CardsByOwner,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		ChangeCardStatus: commands.ChangeCardStatusUseCase{
			Store:        deps.Store,
			CardsByID:    caches.CardsByID,
			CardsByOwner: caches.CardsByOwner,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		DeleteCard: commands.DeleteCardUseCase{
			Store:        deps.Store,
			CardsByID:    caches.CardsByID,
			CardsByOwner: caches.CardsByOwner,
			DeletePolicy: policy,
			Logger:       deps.Logger,
		},
		GetCard: queries.GetCardUseCase{
			Store:     deps.Store,
			CardsByID: caches.CardsByID,
			Logger:    deps.Logger,
		},
		ListUserCards: queries.ListUserCardsUseCase{
			Store:        deps.Store,
			CardsByOwner: caches.CardsByOwner,
			Logger:       deps.Logger,
		},
		ListCards: queries.ListCardsUseCase{Store: deps.Store, Logger: deps.Logger},

		InspectCache: queries.InspectCacheUseCase{Inspector: caches.Inspector, Logger: deps.Logger},
		ClearCache: commands.ClearCacheUseCase{
			UsersByID:    caches.UsersByID,
			CardsByID:    caches.CardsByID,
			CardsByOwner: caches.CardsByOwner,
			Logger:       deps.Logger,
		},
		Logger: deps.Logger,
	}

	return Module{
		Handler:       handler,
		Authenticator: deps.Authenticator,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters and
// header authentication.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Store:         store,
		Caches:        NewCaches(cache.NewMemory()),
		Authenticator: authadapter.HeaderAuthenticator{},
		Clock:         store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
