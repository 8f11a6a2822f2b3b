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

// CreateUserCommand contains transport-agnostic input for registering a user.
type CreateUserCommand struct {
	Identity  entities.Identity
	Name      string
	Surname   string
	BirthDate time.Time
	Email     string
}

// CreateUserUseCase registers an active user. Admin only.
type CreateUserUseCase struct {
	Store     ports.Store
	UsersByID ports.EntryCache[entities.User]
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)
	logger.Info("create user started",
		"event", "accounts_create_user_started",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
	)

	failed := func(err error) error {
		logger.Log(ctx, application.FailureLevel(err), "create user failed",
			"event", "accounts_create_user_failed",
			"module", "account-management/account-service",
			"layer", "application",
			"actor_id", cmd.Identity.SubjectID,
			"error", err.Error(),
		)
		return err
	}

	if err := services.RequireAdmin(cmd.Identity); err != nil {
		return entities.User{}, failed(err)
	}

	now := currentTime(u.Clock)
	user := entities.User{
		Name:      strings.TrimSpace(cmd.Name),
		Surname:   strings.TrimSpace(cmd.Surname),
		BirthDate: services.DateOnly(cmd.BirthDate),
		Email:     services.NormalizeEmail(cmd.Email),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := services.ValidateUserFields(user.Name, user.Surname, user.Email, cmd.BirthDate, now); err != nil {
		return entities.User{}, failed(err)
	}

	var created entities.User
	err := u.Store.Atomically(ctx, func(tx ports.Tx) error {
		taken, err := tx.Users().EmailExists(ctx, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return domainerrors.ErrEmailTaken
		}
		created, err = tx.Users().CreateUser(ctx, user)
		return err
	})
	if err != nil {
		return entities.User{}, failed(err)
	}

	application.PutCached(ctx, logger, u.UsersByID, ports.SpaceUsersByID, created.ID, created, created.Version)

	logger.Info("create user completed",
		"event", "accounts_create_user_completed",
		"module", "account-management/account-service",
		"layer", "application",
		"actor_id", cmd.Identity.SubjectID,
		"user_id", created.ID,
	)
	return created, nil
}
