package services

import (
	"math"
	"testing"
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, time.October, 16, 15, 0, 0, 0, time.UTC)

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(entities.Identity{}), domainerrors.ErrIdentityMissing)
	assert.ErrorIs(t, RequireAdmin(entities.NewIdentity(4, []string{"USER"})), domainerrors.ErrAdminRequired)
	assert.NoError(t, RequireAdmin(entities.NewIdentity(1, []string{"role_admin"})))
	assert.NoError(t, RequireAdmin(entities.NewIdentity(0, []string{"SERVICE"})))
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	cases := []struct {
		name     string
		owner    int64
		identity entities.Identity
		want     error
	}{
		{"anonymous", 4, entities.Identity{}, domainerrors.ErrIdentityMissing},
		{"owner", 4, entities.NewIdentity(4, []string{"USER"}), nil},
		{"other user", 4, entities.NewIdentity(5, []string{"USER"}), domainerrors.ErrNotOwner},
		{"admin", 4, entities.NewIdentity(9, []string{"ADMIN"}), nil},
		{"service", 4, entities.NewIdentity(0, []string{"SERVICE"}), nil},
		{"unknown roles only", 4, entities.NewIdentity(4, []string{"AUDITOR"}), domainerrors.ErrIdentityMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := RequireOwnerOrAdmin(tc.owner, tc.identity)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateUserFields(t *testing.T) {
	birth := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ValidateUserFields("Jane", "Roe", "jane@example.com", birth, today))
	require.NoError(t, ValidateUserFields("Jane", "Roe", "jane@example.com", today, today))

	assert.ErrorIs(t, ValidateUserFields("", "Roe", "jane@example.com", birth, today), domainerrors.ErrInvalidName)
	assert.ErrorIs(t, ValidateUserFields("Jane", "", "jane@example.com", birth, today), domainerrors.ErrInvalidSurname)
	assert.ErrorIs(t, ValidateUserFields("Jane", "Roe", "Jane <jane@example.com>", birth, today), domainerrors.ErrInvalidEmail)
	assert.ErrorIs(t, ValidateUserFields("Jane", "Roe", "jane@example.com", time.Time{}, today), domainerrors.ErrInvalidBirthDate)
	assert.ErrorIs(t, ValidateUserFields("Jane", "Roe", "jane@example.com", today.AddDate(0, 0, 1), today), domainerrors.ErrBirthDateInFuture)
}

func TestValidateUserFilter(t *testing.T) {
	assert.NoError(t, ValidateUserFilter("", ""))
	assert.NoError(t, ValidateUserFilter("Ja", "Ro"))
	assert.ErrorIs(t, ValidateUserFilter("J", ""), domainerrors.ErrInvalidNameFilter)
	assert.ErrorIs(t, ValidateUserFilter("", "R"), domainerrors.ErrInvalidSurnameFilter)
}

func TestValidateCardFields(t *testing.T) {
	expiry := today.AddDate(2, 0, 0)
	require.NoError(t, ValidateCardFields("4111111111111111", "Jane Roe", expiry, today))

	assert.ErrorIs(t, ValidateCardFields("4111-1111-1111-1111", "Jane Roe", expiry, today), domainerrors.ErrInvalidCardNumber)
	assert.ErrorIs(t, ValidateCardFields("411111111111", "Jane Roe", expiry, today), domainerrors.ErrInvalidCardNumber)
	assert.ErrorIs(t, ValidateCardFields("4111111111111111", "", expiry, today), domainerrors.ErrInvalidHolder)
	assert.ErrorIs(t, ValidateCardFields("4111111111111111", "Jane Roe", today, today), domainerrors.ErrExpirationNotInFuture)
}

func TestCardDeletePolicy(t *testing.T) {
	active := entities.PaymentCard{Active: true}
	inactive := entities.PaymentCard{}

	policy, err := ParseCardDeletePolicy("")
	require.NoError(t, err)
	assert.Equal(t, CardDeleteAny, policy)
	assert.NoError(t, policy.CheckDeletable(active))

	policy, err = ParseCardDeletePolicy("INACTIVE_ONLY")
	require.NoError(t, err)
	assert.ErrorIs(t, policy.CheckDeletable(active), domainerrors.ErrCardMustBeInactive)
	assert.NoError(t, policy.CheckDeletable(inactive))

	assert.ErrorIs(t, CardDeleteActiveOnly.CheckDeletable(inactive), domainerrors.ErrCardAlreadyInactive)

	_, err = ParseCardDeletePolicy("never")
	assert.Error(t, err)
}

func TestValidatePage(t *testing.T) {
	page, err := ValidatePage(entities.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultPageSize, page.Size)

	_, err = ValidatePage(entities.PageRequest{Page: -1})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)
	_, err = ValidatePage(entities.PageRequest{Size: entities.MaxPageSize + 1})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)
}

func TestValidatePageRejectsOffsetOverflow(t *testing.T) {
	_, err := ValidatePage(entities.PageRequest{Page: math.MaxInt, Size: 20})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)
	_, err = ValidatePage(entities.PageRequest{Page: math.MaxInt/entities.MaxPageSize + 1, Size: entities.MaxPageSize})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)

	page, err := ValidatePage(entities.PageRequest{Page: math.MaxInt / 20, Size: 20})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, page.Offset(), 0)
}
