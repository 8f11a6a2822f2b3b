package bootstrap

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	authadapter "cardvault/contexts/account-management/account-service/adapters/auth"
	"cardvault/internal/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.DSN = filepath.Join(t.TempDir(), "cardvault.db")
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAPIServesOverSQLite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := BuildAPI(context.Background(), testConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	body := `{"name":"Jane","surname":"Roe","birth_date":"1990-04-12","email":"jane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "1")
	req.Header.Set("X-User-Roles", "ROLE_ADMIN")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/users/by-email?email=jane@example.com", nil)
	req.Header.Set("X-User-Id", "1")
	req.Header.Set("X-User-Roles", "ROLE_ADMIN")
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBuildAPIWithRedisCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.RedisAddr = mr.Addr()

	app, err := BuildAPI(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	require.NoError(t, app.Close())
}

func TestBuildAPIRejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cards.DeletePolicy = "never"
	_, err := BuildAPI(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}

func TestNewAuthenticator(t *testing.T) {
	authenticator, err := NewAuthenticator(config.AuthConfig{Mode: config.AuthHeaders})
	require.NoError(t, err)
	assert.IsType(t, authadapter.HeaderAuthenticator{}, authenticator)

	authenticator, err = NewAuthenticator(config.AuthConfig{Mode: config.AuthJWT, JWTSecret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	assert.IsType(t, authadapter.JWTAuthenticator{}, authenticator)

	_, err = NewAuthenticator(config.AuthConfig{Mode: config.AuthJWT})
	assert.Error(t, err)
	_, err = NewAuthenticator(config.AuthConfig{Mode: "basic"})
	assert.Error(t, err)
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(config.AuthConfig{})
	assert.Error(t, err)

	issuer, err := NewTokenIssuer(config.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", Issuer: "cardvault"})
	require.NoError(t, err)
	token, err := issuer.Issue("7", []string{"ROLE_USER"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}
