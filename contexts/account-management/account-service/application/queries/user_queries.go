package queries

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

// GetUserQuery is the request model for reading one user.
type GetUserQuery struct {
	Identity entities.Identity
	UserID   int64
}

// GetUserUseCase serves a user through the users:id cache. The caller must own the
// record or be an admin.
type GetUserUseCase struct {
	Store     ports.Store
	UsersByID ports.EntryCache[entities.User]
	Logger    *slog.Logger
}

func (u GetUserUseCase) Execute(ctx context.Context, query GetUserQuery) (entities.User, error) {
	if err := services.RequireOwnerOrAdmin(query.UserID, query.Identity); err != nil {
		return entities.User{}, err
	}
	if query.UserID <= 0 {
		return entities.User{}, domainerrors.ErrInvalidUserID
	}

	user, err := application.ReadThrough(ctx, u.Logger, u.UsersByID, ports.SpaceUsersByID, query.UserID,
		func(ctx context.Context) (entities.User, int64, error) {
			var user entities.User
			err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
				var err error
				user, err = tx.Users().GetUser(ctx, query.UserID)
				return err
			})
			return user, user.Version, err
		})
	if err != nil {
		logFailure(ctx, u.Logger, "get user failed", "accounts_get_user_failed", query.Identity, err,
			"user_id", query.UserID)
		return entities.User{}, err
	}
	return user, nil
}

// GetUserByEmailQuery looks a user up by address. Admin only.
type GetUserByEmailQuery struct {
	Identity entities.Identity
	Email    string
}

type GetUserByEmailUseCase struct {
	Store  ports.Store
	Logger *slog.Logger
}

func (u GetUserByEmailUseCase) Execute(ctx context.Context, query GetUserByEmailQuery) (entities.User, error) {
	if err := services.RequireAdmin(query.Identity); err != nil {
		return entities.User{}, err
	}
	email := services.NormalizeEmail(query.Email)
	if email == "" {
		return entities.User{}, domainerrors.ErrInvalidEmail
	}

	var user entities.User
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		var err error
		user, err = tx.Users().GetUserByEmail(ctx, email)
		return err
	})
	if err != nil {
		logFailure(ctx, u.Logger, "get user by email failed", "accounts_get_user_by_email_failed", query.Identity, err)
		return entities.User{}, err
	}
	return user, nil
}

// ListUsersQuery filters users by name and surname fragments.
type ListUsersQuery struct {
	Identity entities.Identity
	Name     string
	Surname  string
	Page     entities.PageRequest
}

// ListUsersUseCase pages through users. Admin only; results are never cached.
type ListUsersUseCase struct {
	Store  ports.Store
	Logger *slog.Logger
}

func (u ListUsersUseCase) Execute(ctx context.Context, query ListUsersQuery) (entities.Page[entities.User], error) {
	if err := services.RequireAdmin(query.Identity); err != nil {
		return entities.Page[entities.User]{}, err
	}
	name := strings.TrimSpace(query.Name)
	surname := strings.TrimSpace(query.Surname)
	if err := services.ValidateUserFilter(name, surname); err != nil {
		return entities.Page[entities.User]{}, err
	}
	page, err := services.ValidatePage(query.Page)
	if err != nil {
		return entities.Page[entities.User]{}, err
	}

	var result entities.Page[entities.User]
	err = u.Store.Atomically(ctx, func(tx ports.Tx) error {
		var err error
		result, err = tx.Users().ListUsers(ctx, ports.UserFilter{Name: name, Surname: surname, Page: page})
		return err
	})
	if err != nil {
		logFailure(ctx, u.Logger, "list users failed", "accounts_list_users_failed", query.Identity, err)
		return entities.Page[entities.User]{}, err
	}
	return result, nil
}
