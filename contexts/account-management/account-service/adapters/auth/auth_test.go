package authadapter

import (
	"context"
	"testing"
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret-test-secret-test-secret")

func TestJWTAuthenticatorAcceptsIssuedToken(t *testing.T) {
	issuer := TokenIssuer{Secret: secret, Issuer: "cardvault", TTL: time.Hour}
	token, err := issuer.Issue("42", []string{"ROLE_USER"})
	require.NoError(t, err)

	identity, err := JWTAuthenticator{Secret: secret, Issuer: "cardvault"}.Authenticate(
		context.Background(),
		ports.Credential{BearerToken: token},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.SubjectID)
	assert.Equal(t, []entities.Role{entities.RoleUser}, identity.Roles)
}

func TestJWTAuthenticatorSingleRoleClaim(t *testing.T) {
	claims := AccessClaims{
		Role: "ROLE_ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	identity, err := JWTAuthenticator{Secret: secret}.Authenticate(context.Background(), ports.Credential{BearerToken: token})
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
}

func TestJWTAuthenticatorRejects(t *testing.T) {
	valid := TokenIssuer{Secret: secret, TTL: time.Hour}

	expired, err := TokenIssuer{
		Secret: secret,
		TTL:    time.Minute,
		Now:    func() time.Time { return time.Now().Add(-time.Hour) },
	}.Issue("42", []string{"USER"})
	require.NoError(t, err)

	wrongKey, err := TokenIssuer{Secret: []byte("another-secret-another-secret"), TTL: time.Hour}.Issue("42", []string{"USER"})
	require.NoError(t, err)

	noRoles, err := valid.Issue("42", []string{"GUEST"})
	require.NoError(t, err)

	noSubject, err := valid.Issue("", []string{"USER"})
	require.NoError(t, err)

	wrongIssuer, err := TokenIssuer{Secret: secret, Issuer: "elsewhere", TTL: time.Hour}.Issue("42", []string{"USER"})
	require.NoError(t, err)

	authenticator := JWTAuthenticator{Secret: secret, Issuer: ""}
	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-jwt",
		"expired":   expired,
		"wrong key": wrongKey,
		"no roles":  noRoles,
		"no sub":    noSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := authenticator.Authenticate(context.Background(), ports.Credential{BearerToken: token})
			assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
		})
	}

	_, err = JWTAuthenticator{Secret: secret, Issuer: "cardvault"}.Authenticate(
		context.Background(),
		ports.Credential{BearerToken: wrongIssuer},
	)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestJWTAuthenticatorServiceWithoutNumericSubject(t *testing.T) {
	token, err := TokenIssuer{Secret: secret, TTL: time.Hour}.Issue("billing-service", []string{"SERVICE"})
	require.NoError(t, err)

	identity, err := JWTAuthenticator{Secret: secret}.Authenticate(context.Background(), ports.Credential{BearerToken: token})
	require.NoError(t, err)
	assert.Zero(t, identity.SubjectID)
	assert.True(t, identity.IsAdmin())
}

func TestHeaderAuthenticator(t *testing.T) {
	identity, err := HeaderAuthenticator{}.Authenticate(context.Background(), ports.Credential{
		UserID: "7",
		Roles:  "ROLE_USER, ROLE_ADMIN,unknown",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.SubjectID)
	assert.Equal(t, []entities.Role{entities.RoleUser, entities.RoleAdmin}, identity.Roles)

	_, err = HeaderAuthenticator{}.Authenticate(context.Background(), ports.Credential{})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = HeaderAuthenticator{}.Authenticate(context.Background(), ports.Credential{UserID: "abc", Roles: "USER"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}
