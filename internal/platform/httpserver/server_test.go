package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	accounts "cardvault/contexts/account-management/account-service"
	authadapter "cardvault/contexts/account-management/account-service/adapters/auth"
	httptransport "cardvault/contexts/account-management/account-service/transport/http"
	"cardvault/internal/platform/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type caller struct {
	userID string
	roles  string
	token  string
}

var (
	anonymous = caller{}
	admin     = caller{userID: "9000", roles: "ROLE_ADMIN"}
)

func asUser(id string) caller {
	return caller{userID: id, roles: "ROLE_USER"}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(accounts.NewInMemoryModule(logger), logger, config.HTTPConfig{})
}

func do(t *testing.T, s *Server, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.userID != "" {
		req.Header.Set(headerUserID, who.userID)
	}
	if who.roles != "" {
		req.Header.Set(headerUserRoles, who.roles)
	}
	if who.token != "" {
		req.Header.Set("Authorization", "Bearer "+who.token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[httptransport.ErrorResponse](t, rec).Code
}

func createUser(t *testing.T, s *Server, email string) httptransport.UserResponse {
	t.Helper()
	rec := do(t, s, admin, http.MethodPost, "/users", httptransport.UserRequest{
		Name:      "Jane",
		Surname:   "Roe",
		BirthDate: "1990-04-12",
		Email:     email,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[httptransport.UserResponse](t, rec)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func cardRequest(number string) httptransport.CardRequest {
	return httptransport.CardRequest{
		Number:         number,
		Holder:         "Jane Roe",
		ExpirationDate: "2099-12-31",
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, anonymous, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))
}

func TestUserLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	user := createUser(t, s, "jane@example.com")
	assert.True(t, user.Active)
	assert.Equal(t, "1990-04-12", user.BirthDate)

	owner := asUser(itoa(user.ID))
	rec := do(t, s, owner, http.MethodGet, "/users/"+itoa(user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "jane@example.com", decode[httptransport.UserResponse](t, rec).Email)

	rec = do(t, s, admin, http.MethodGet, "/users/by-email?email=JANE@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, user.ID, decode[httptransport.UserResponse](t, rec).ID)

	rec = do(t, s, admin, http.MethodGet, "/users?name=Ja&page=0&size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[httptransport.UserPageResponse](t, rec)
	assert.EqualValues(t, 1, page.TotalItems)

	rec = do(t, s, admin, http.MethodPut, "/users/"+itoa(user.ID)+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[httptransport.UserResponse](t, rec).Active)

	rec = do(t, s, admin, http.MethodPut, "/users/"+itoa(user.ID)+"/deactivate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_state", errorCode(t, rec))

	rec = do(t, s, admin, http.MethodDelete, "/users/"+itoa(user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, admin, http.MethodGet, "/users/"+itoa(user.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestStatusMapping(t *testing.T) {
	s := newTestServer(t)
	user := createUser(t, s, "jane@example.com")
	other := createUser(t, s, "john@example.com")

	cases := []struct {
		name   string
		who    caller
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"anonymous", anonymous, http.MethodGet, "/users/" + itoa(user.ID), nil, http.StatusUnauthorized, "unauthenticated"},
		{"bad roles header", caller{userID: "abc"}, http.MethodGet, "/users/" + itoa(user.ID), nil, http.StatusUnauthorized, "unauthenticated"},
		{"other user", asUser(itoa(other.ID)), http.MethodGet, "/users/" + itoa(user.ID), nil, http.StatusForbidden, "forbidden"},
		{"user lists users", asUser(itoa(user.ID)), http.MethodGet, "/users", nil, http.StatusForbidden, "forbidden"},
		{"missing user", admin, http.MethodGet, "/users/999", nil, http.StatusNotFound, "not_found"},
		{"duplicate email", admin, http.MethodPost, "/users", httptransport.UserRequest{
			Name: "Jane", Surname: "Roe", BirthDate: "1990-04-12", Email: "jane@example.com",
		}, http.StatusConflict, "conflict"},
		{"bad path id", admin, http.MethodGet, "/users/zero", nil, http.StatusBadRequest, "invalid_argument"},
		{"binding failure", admin, http.MethodPost, "/users", map[string]string{"name": "Jane"}, http.StatusBadRequest, "invalid_argument"},
		{"bad date", admin, http.MethodPost, "/users", httptransport.UserRequest{
			Name: "Jane", Surname: "Roe", BirthDate: "12/04/1990", Email: "x@example.com",
		}, http.StatusBadRequest, "invalid_argument"},
		{"negative page", admin, http.MethodGet, "/users?page=-1", nil, http.StatusBadRequest, "invalid_argument"},
		{"page offset overflow", admin, http.MethodGet, "/cards?page=9223372036854775807&size=20", nil, http.StatusBadRequest, "invalid_argument"},
		{"short filter", admin, http.MethodGet, "/users?name=J", nil, http.StatusBadRequest, "invalid_argument"},
		{"unknown cache kind", admin, http.MethodDelete, "/cache/sessions", nil, http.StatusBadRequest, "invalid_argument"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, tc.who, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestCardLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	user := createUser(t, s, "jane@example.com")
	owner := asUser(itoa(user.ID))

	rec := do(t, s, owner, http.MethodPost, "/cards/user/"+itoa(user.ID), cardRequest("4111111111111111"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[httptransport.CardResponse](t, rec)
	assert.Equal(t, user.ID, card.UserID)
	assert.Equal(t, "2099-12-31", card.ExpirationDate)

	rec = do(t, s, owner, http.MethodPost, "/cards/user/"+itoa(user.ID), cardRequest("4111111111111111"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, owner, http.MethodPost, "/cards/user/"+itoa(user.ID), cardRequest("4111-1111"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, owner, http.MethodGet, "/cards/users/"+itoa(user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[httptransport.CardListResponse](t, rec)
	require.Len(t, list.Cards, 1)
	assert.Equal(t, card.ID, list.Cards[0].ID)

	update := cardRequest("5500000000000004")
	update.Holder = "Jane R. Roe"
	rec = do(t, s, owner, http.MethodPut, "/cards/"+itoa(card.ID), update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Jane R. Roe", decode[httptransport.CardResponse](t, rec).Holder)

	rec = do(t, s, owner, http.MethodPut, "/cards/"+itoa(card.ID)+"/deactivate", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, admin, http.MethodPut, "/cards/"+itoa(card.ID)+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, owner, http.MethodPut, "/cards/"+itoa(card.ID), update)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, admin, http.MethodGet, "/cards?page=0&size=5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode[httptransport.CardPageResponse](t, rec).TotalItems)

	rec = do(t, s, owner, http.MethodDelete, "/cards/"+itoa(card.ID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, admin, http.MethodDelete, "/cards/"+itoa(card.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, owner, http.MethodGet, "/cards/"+itoa(card.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCacheEndpoints(t *testing.T) {
	s := newTestServer(t)
	user := createUser(t, s, "jane@example.com")

	rec := do(t, s, admin, http.MethodGet, "/users/"+itoa(user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, admin, http.MethodGet, "/cache/users:id/"+itoa(user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[httptransport.CacheEntryResponse](t, rec)
	assert.Equal(t, "users:id", entry.Space)
	assert.Contains(t, string(entry.Value), "jane@example.com")

	rec = do(t, s, asUser(itoa(user.ID)), http.MethodDelete, "/cache/all", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, admin, http.MethodDelete, "/cache/users", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"users:id"}, decode[httptransport.ClearCacheResponse](t, rec).Cleared)

	rec = do(t, s, admin, http.MethodGet, "/cache/users:id/"+itoa(user.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBearerTokenAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	module := accounts.NewInMemoryModule(logger)
	module.Authenticator = authadapter.JWTAuthenticator{Secret: testSecret, Issuer: "cardvault"}
	s := New(module, logger, config.HTTPConfig{})

	issuer := authadapter.TokenIssuer{Secret: testSecret, Issuer: "cardvault", TTL: time.Hour}
	token, err := issuer.Issue("9000", []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	rec := do(t, s, caller{token: token}, http.MethodGet, "/cards", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, caller{token: token + "x"}, http.MethodGet, "/cards", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", errorCode(t, rec))

	other := authadapter.TokenIssuer{Secret: []byte("ffffffffffffffffffffffffffffffff"), Issuer: "cardvault"}
	forged, err := other.Issue("9000", []string{"ROLE_ADMIN"})
	require.NoError(t, err)
	rec = do(t, s, caller{token: forged}, http.MethodGet, "/cards", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSwaggerDocument(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, anonymous, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/cards/user/{userId}")
}
