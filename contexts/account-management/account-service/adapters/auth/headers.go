package authadapter

import (
	"context"
	"strings"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/ports"
)

// HeaderAuthenticator trusts an identity already established by a gateway in front of the
// service (X-User-Id plus comma-separated X-User-Roles).
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(_ context.Context, credential ports.Credential) (entities.Identity, error) {
	if strings.TrimSpace(credential.UserID) == "" && strings.TrimSpace(credential.Roles) == "" {
		return entities.Identity{}, domainerrors.ErrIdentityMissing
	}
	identity, err := resolveIdentity(credential.UserID, strings.Split(credential.Roles, ","))
	if err != nil {
		return entities.Identity{}, domainerrors.ErrIdentityMissing
	}
	return identity, nil
}
