package services

import (
	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
)

// RequireAdmin passes for ADMIN and SERVICE identities.
func RequireAdmin(identity entities.Identity) error {
	if !identity.IsAuthenticated() {
		return domainerrors.ErrIdentityMissing
	}
	if identity.IsAdmin() {
		return nil
	}
	return domainerrors.ErrAdminRequired
}

// RequireOwnerOrAdmin passes for admins, or for a USER whose subject owns the resource.
// ownerID must be the persisted owner of the target, never a caller-supplied value
// for an existing resource.
func RequireOwnerOrAdmin(ownerID int64, identity entities.Identity) error {
	if !identity.IsAuthenticated() {
		return domainerrors.ErrIdentityMissing
	}
	if identity.IsAdmin() {
		return nil
	}
	if identity.HasRole(entities.RoleUser) && identity.SubjectID > 0 && identity.SubjectID == ownerID {
		return nil
	}
	return domainerrors.ErrNotOwner
}
