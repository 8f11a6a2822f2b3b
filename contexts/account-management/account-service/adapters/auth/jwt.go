package authadapter

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims carries the subject id and its roles. Both "role" and "roles" are accepted.
type AccessClaims struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 bearer tokens.
type JWTAuthenticator struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

func (a JWTAuthenticator) Authenticate(_ context.Context, credential ports.Credential) (entities.Identity, error) {
	token := strings.TrimSpace(credential.BearerToken)
	if token == "" {
		return entities.Identity{}, domainerrors.ErrIdentityMissing
	}
	if len(a.Secret) == 0 {
		return entities.Identity{}, domainerrors.Internal(errors.New("jwt secret is not configured"))
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.Issuer != "" {
		options = append(options, jwt.WithIssuer(a.Issuer))
	}

	var claims AccessClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.Secret, nil
	}, options...); err != nil {
		return entities.Identity{}, domainerrors.ErrInvalidToken
	}

	roles := claims.Roles
	if claims.Role != "" {
		roles = append(roles, claims.Role)
	}
	return resolveIdentity(claims.Subject, roles)
}

func (a JWTAuthenticator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// TokenIssuer signs tokens accepted by JWTAuthenticator.
type TokenIssuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (i TokenIssuer) Issue(subject string, roles []string) (string, error) {
	if len(i.Secret) == 0 {
		return "", errors.New("jwt secret is required")
	}
	now := time.Now()
	if i.Now != nil {
		now = i.Now()
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := AccessClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    i.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// resolveIdentity requires a positive numeric subject unless the caller is a service.
func resolveIdentity(subject string, roles []string) (entities.Identity, error) {
	subjectID, err := strconv.ParseInt(strings.TrimSpace(subject), 10, 64)
	if err != nil || subjectID <= 0 {
		subjectID = 0
	}
	identity := entities.NewIdentity(subjectID, roles)
	if !identity.IsAuthenticated() {
		return entities.Identity{}, domainerrors.ErrInvalidToken
	}
	if subjectID == 0 && !identity.HasRole(entities.RoleService) {
		return entities.Identity{}, domainerrors.ErrInvalidToken
	}
	return identity, nil
}
