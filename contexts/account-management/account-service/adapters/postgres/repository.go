package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements ports.Store on gorm. It runs on PostgreSQL in production and on
// SQLite for local runs and tests; the row lock taken by LockUser is a no-op on SQLite,
// whose writers are already serialized.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the users and payment_cards tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&userModel{}, &cardModel{}); err != nil {
		return domainerrors.Internal(err)
	}
	return nil
}

func (r *Repository) Atomically(ctx context.Context, fn func(tx ports.Tx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{db: tx, logger: r.logger})
	})
	if err == nil || isDomainError(err) {
		return err
	}
	r.logger.Error("account store transaction failed",
		"event", "accounts_store_transaction_failed",
		"module", "account-management/account-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	return domainerrors.Internal(err)
}

type gormTx struct {
	db     *gorm.DB
	logger *slog.Logger
}

func (t gormTx) Users() ports.UserRepository { return userRepository{db: t.db, logger: t.logger} }

func (t gormTx) Cards() ports.CardRepository { return cardRepository{db: t.db, logger: t.logger} }

type userRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func (r userRepository) GetUser(ctx context.Context, userID int64) (entities.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", userID))
}

func (r userRepository) LockUser(ctx context.Context, userID int64) (entities.User, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", userID))
}

func (r userRepository) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r userRepository) first(query *gorm.DB) (entities.User, error) {
	var row userModel
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, domainerrors.Internal(err)
	}
	return row.toEntity(), nil
}

func (r userRepository) EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("email = ? AND id <> ?", email, excludeUserID).
		Count(&count).
		Error; err != nil {
		return false, domainerrors.Internal(err)
	}
	return count > 0, nil
}

func (r userRepository) ListUsers(ctx context.Context, filter ports.UserFilter) (entities.Page[entities.User], error) {
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&userModel{})
		if filter.Name != "" {
			tx = tx.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(filter.Name))
		}
		if filter.Surname != "" {
			tx = tx.Where("LOWER(surname) LIKE ? ESCAPE '\\'", containsPattern(filter.Surname))
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return entities.Page[entities.User]{}, domainerrors.Internal(err)
	}

	var rows []userModel
	if err := filtered().Order("id ASC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Size).
		Find(&rows).
		Error; err != nil {
		return entities.Page[entities.User]{}, domainerrors.Internal(err)
	}

	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return entities.NewPage(items, filter.Page, total), nil
}

func (r userRepository) CreateUser(ctx context.Context, user entities.User) (entities.User, error) {
	row := userModelFromEntity(user)
	row.ID = 0
	row.Version = 1
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			r.logUniqueViolation("create_user", err)
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		return entities.User{}, domainerrors.Internal(err)
	}
	return row.toEntity(), nil
}

func (r userRepository) SaveUser(ctx context.Context, user entities.User) (entities.User, error) {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		Updates(map[string]any{
			"name":       user.Name,
			"surname":    user.Surname,
			"birth_date": user.BirthDate.UTC(),
			"email":      user.Email,
			"active":     user.Active,
			"version":    user.Version + 1,
			"updated_at": user.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			r.logUniqueViolation("save_user", result.Error)
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		return entities.User{}, domainerrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetUser(ctx, user.ID); err != nil {
			return entities.User{}, err
		}
		return entities.User{}, domainerrors.ErrConcurrentUpdate
	}
	user.Version++
	return user, nil
}

func (r userRepository) DeleteUser(ctx context.Context, userID int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", userID).Delete(&userModel{})
	if result.Error != nil {
		return domainerrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r userRepository) logUniqueViolation(operation string, err error) {
	r.logger.Warn("unique constraint rejected user write",
		"event", "accounts_user_unique_violation",
		"module", "account-management/account-service",
		"layer", "adapter",
		"operation", operation,
		"constraint", constraintName(err),
	)
}

type cardRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func (r cardRepository) GetCard(ctx context.Context, cardID int64) (entities.PaymentCard, error) {
	var row cardModel
	if err := r.db.WithContext(ctx).Where("id = ?", cardID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PaymentCard{}, domainerrors.ErrCardNotFound
		}
		return entities.PaymentCard{}, domainerrors.Internal(err)
	}
	return row.toEntity(), nil
}

func (r cardRepository) ListCardsByOwner(ctx context.Context, ownerID int64) ([]entities.PaymentCard, error) {
	var rows []cardModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, domainerrors.Internal(err)
	}
	items := make([]entities.PaymentCard, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r cardRepository) CountCardsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&cardModel{}).
		Where("user_id = ?", ownerID).
		Count(&count).
		Error; err != nil {
		return 0, domainerrors.Internal(err)
	}
	return count, nil
}

func (r cardRepository) NumberExists(ctx context.Context, number string, excludeCardID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&cardModel{}).
		Where("number = ? AND id <> ?", number, excludeCardID).
		Count(&count).
		Error; err != nil {
		return false, domainerrors.Internal(err)
	}
	return count > 0, nil
}

func (r cardRepository) ListCards(ctx context.Context, page entities.PageRequest) (entities.Page[entities.PaymentCard], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&cardModel{}).Count(&total).Error; err != nil {
		return entities.Page[entities.PaymentCard]{}, domainerrors.Internal(err)
	}

	var rows []cardModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).
		Error; err != nil {
		return entities.Page[entities.PaymentCard]{}, domainerrors.Internal(err)
	}

	items := make([]entities.PaymentCard, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return entities.NewPage(items, page, total), nil
}

func (r cardRepository) CreateCard(ctx context.Context, card entities.PaymentCard) (entities.PaymentCard, error) {
	row := cardModelFromEntity(card)
	row.ID = 0
	row.Version = 1
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			r.logUniqueViolation("create_card", err)
			return entities.PaymentCard{}, domainerrors.ErrCardNumberTaken
		}
		return entities.PaymentCard{}, domainerrors.Internal(err)
	}
	return row.toEntity(), nil
}

// SaveCard never moves a card to another owner.
func (r cardRepository) SaveCard(ctx context.Context, card entities.PaymentCard) (entities.PaymentCard, error) {
	result := r.db.WithContext(ctx).
		Model(&cardModel{}).
		Where("id = ? AND version = ?", card.ID, card.Version).
		Updates(map[string]any{
			"number":          card.Number,
			"holder":          card.Holder,
			"expiration_date": card.ExpirationDate.UTC(),
			"active":          card.Active,
			"version":         card.Version + 1,
			"updated_at":      card.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			r.logUniqueViolation("save_card", result.Error)
			return entities.PaymentCard{}, domainerrors.ErrCardNumberTaken
		}
		return entities.PaymentCard{}, domainerrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetCard(ctx, card.ID); err != nil {
			return entities.PaymentCard{}, err
		}
		return entities.PaymentCard{}, domainerrors.ErrConcurrentUpdate
	}
	card.Version++
	return card, nil
}

func (r cardRepository) DeleteCard(ctx context.Context, cardID int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", cardID).Delete(&cardModel{})
	if result.Error != nil {
		return domainerrors.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCardNotFound
	}
	return nil
}

func (r cardRepository) DeleteCardsByOwner(ctx context.Context, ownerID int64) ([]entities.PaymentCard, error) {
	removed, err := r.ListCardsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return removed, nil
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Delete(&cardModel{}).Error; err != nil {
		return nil, domainerrors.Internal(err)
	}
	return removed, nil
}

func (r cardRepository) logUniqueViolation(operation string, err error) {
	r.logger.Warn("unique constraint rejected card write",
		"event", "accounts_card_unique_violation",
		"module", "account-management/account-service",
		"layer", "adapter",
		"operation", operation,
		"constraint", constraintName(err),
	)
}

// isUniqueViolation covers raw pgconn errors and gorm's translated duplicate-key error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		domainerrors.ErrUnauthenticated,
		domainerrors.ErrForbidden,
		domainerrors.ErrNotFound,
		domainerrors.ErrConflict,
		domainerrors.ErrInvalidArgument,
		domainerrors.ErrInvalidState,
		domainerrors.ErrInternal,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func containsPattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(value))
	return "%" + escaped + "%"
}
