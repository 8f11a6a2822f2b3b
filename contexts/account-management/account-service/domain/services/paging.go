package services

import (
	"math"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
)

// ValidatePage applies the default size and rejects negative pages, oversized pages
// and pages whose offset would not fit in an int.
func ValidatePage(request entities.PageRequest) (entities.PageRequest, error) {
	request = request.Normalize()
	if request.Page < 0 || request.Size < 1 || request.Size > entities.MaxPageSize {
		return entities.PageRequest{}, domainerrors.ErrInvalidPage
	}
	if request.Page > math.MaxInt/request.Size {
		return entities.PageRequest{}, domainerrors.ErrInvalidPage
	}
	return request, nil
}
