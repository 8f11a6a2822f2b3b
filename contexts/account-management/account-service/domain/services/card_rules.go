package services

import (
	"fmt"
	"strings"
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
)

// MaxCardsPerUser bounds how many cards one owner may hold at a time.
const MaxCardsPerUser = 5

const maxHolderLength = 100

// CardDeletePolicy decides which card states may be deleted.
type CardDeletePolicy string

const (
	CardDeleteAny          CardDeletePolicy = "any"
	CardDeleteInactiveOnly CardDeletePolicy = "inactive_only"
	CardDeleteActiveOnly   CardDeletePolicy = "active_only"
)

func ParseCardDeletePolicy(raw string) (CardDeletePolicy, error) {
	switch policy := CardDeletePolicy(strings.ToLower(strings.TrimSpace(raw))); policy {
	case "":
		return CardDeleteAny, nil
	case CardDeleteAny, CardDeleteInactiveOnly, CardDeleteActiveOnly:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown card delete policy %q", raw)
	}
}

// CheckDeletable applies the policy to the card's current state.
func (p CardDeletePolicy) CheckDeletable(card entities.PaymentCard) error {
	switch p {
	case CardDeleteInactiveOnly:
		if card.Active {
			return domainerrors.ErrCardMustBeInactive
		}
	case CardDeleteActiveOnly:
		if !card.Active {
			return domainerrors.ErrCardAlreadyInactive
		}
	}
	return nil
}

// ValidateCardNumber requires 13..19 ASCII digits.
func ValidateCardNumber(number string) error {
	if len(number) < 13 || len(number) > 19 {
		return domainerrors.ErrInvalidCardNumber
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return domainerrors.ErrInvalidCardNumber
		}
	}
	return nil
}

// ValidateCardFields checks holder, number format and a strictly future expiration date.
func ValidateCardFields(number, holder string, expiration time.Time, now time.Time) error {
	if !validLength(holder, 1, maxHolderLength) {
		return domainerrors.ErrInvalidHolder
	}
	if expiration.IsZero() || !DateOnly(expiration).After(DateOnly(now)) {
		return domainerrors.ErrExpirationNotInFuture
	}
	return ValidateCardNumber(number)
}
