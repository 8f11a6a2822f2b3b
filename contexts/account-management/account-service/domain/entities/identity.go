package entities

import "strings"

// Role is a coarse-grained grant carried by an authenticated identity.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	// RoleService marks trusted internal callers; it passes every policy check.
	RoleService Role = "SERVICE"
)

// ParseRole accepts "ADMIN" and "ROLE_ADMIN" spellings in any case.
func ParseRole(raw string) (Role, bool) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "ROLE_")
	switch Role(name) {
	case RoleAdmin, RoleUser, RoleService:
		return Role(name), true
	default:
		return "", false
	}
}

// Identity is the resolved caller of one request.
type Identity struct {
	SubjectID int64
	Roles     []Role
}

// NewIdentity keeps recognized roles only, without duplicates.
func NewIdentity(subjectID int64, roleNames []string) Identity {
	identity := Identity{SubjectID: subjectID}
	for _, raw := range roleNames {
		role, ok := ParseRole(raw)
		if !ok || identity.HasRole(role) {
			continue
		}
		identity.Roles = append(identity.Roles, role)
	}
	return identity
}

func (i Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAuthenticated reports whether at least one recognized role was granted.
func (i Identity) IsAuthenticated() bool {
	return len(i.Roles) > 0
}

func (i Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin) || i.HasRole(RoleService)
}
