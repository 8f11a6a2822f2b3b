package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "cardvault/contexts/account-management/account-service/application"
	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
)

// UpdateUserCommand replaces the editable profile fields of one user.
type UpdateUserCommand struct {
	Identity  entities.Identity
	UserID    int64
	Name      string
	Surname   string
	BirthDate time.Time
	Email     string
}

// UpdateUserUseCase lets a user edit their own profile, or an admin edit anyone's.
// Inactive users cannot be edited.
type UpdateUserUseCase struct {
	Store     ports.Store
	UsersByID ports.EntryCache[entities.User]
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u UpdateUserUseCase) Execute(ctx context.Context, cmd UpdateUserCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("update user started",
		"event", "accounts_update_user_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", cmd.UserID,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "update user failed",
			"event", "accounts_update_user_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"user_id", cmd.UserID,
			"error", err.Error(),
		)
		return err
	}

	if err := services.RequireOwnerOrAdmin(cmd.UserID, cmd.Identity); err != nil {
		return entities.User{}, failed(err)
	}
	if cmd.UserID <= 0 {
		return entities.User{}, failed(domainerrors.ErrInvalidUserID)
	}

	now := currentTime(u.Clock)
	name := strings.TrimSpace(cmd.Name)
	surname := strings.TrimSpace(cmd.Surname)
	email := services.NormalizeEmail(cmd.Email)
	if err := services.ValidateUserFields(name, surname, email, cmd.BirthDate, now); err != nil {
		return entities.User{}, failed(err)
	}

	var saved entities.User
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		user, err := tx.Users().GetUser(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if !user.Active {
			return domainerrors.ErrUserInactive
		}
		if email != user.Email {
			taken, err := tx.Users().EmailExists(ctx, email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return domainerrors.ErrEmailTaken
			}
		}

		user.Name = name
		user.Surname = surname
		user.BirthDate = services.DateOnly(cmd.BirthDate)
		user.Email = email
		user.UpdatedAt = now
		saved, err = tx.Users().SaveUser(ctx, user)
		return err
	})
	if err != nil {
		return entities.User{}, failed(err)
	}

	application.PutCached(ctx, logger, u.UsersByID, ports.SpaceUsersByID, saved.ID, saved, saved.Version)

	logger.Info("update user completed",
		"event", "accounts_update_user_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", saved.ID,
		"version", saved.Version,
	)
	return saved, nil
}
