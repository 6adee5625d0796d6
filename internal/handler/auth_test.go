package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/theatre-production/internal/handler"
	"github.com/iliyamo/theatre-production/internal/router"
	"github.com/iliyamo/theatre-production/internal/service"
	"github.com/iliyamo/theatre-production/internal/testutil"
)

type authResp struct {
	User struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
	Refresh struct {
		Token string `json:"token"`
	} `json:"refresh"`
}

func newAuthServer(t *testing.T) *server {
	t.Helper()
	identity := service.NewIdentity(testutil.NewStore(t), service.IdentityConfig{
		JWTSecret:      secret,
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	})
	e := echo.New()
	router.RegisterAuth(e, handler.NewAuthHandler(identity, secret), secret, passThrough)
	return &server{e: e}
}

func TestAuthFlow(t *testing.T) {
	s := newAuthServer(t)

	rec := s.do(t, "", http.MethodPost, "/v1/auth/register", `{"username":"Stage@Example.com","password":"curtain-call"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[authResp](t, rec)
	assert.Equal(t, "stage@example.com", reg.User.Username)
	assert.NotEmpty(t, reg.Access.Token)
	assert.NotEmpty(t, reg.Refresh.Token)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/register", `{"username":"stage@example.com","password":"curtain-call"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/register", `{"username":"new@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/login", `{"username":"stage@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/login", `{"username":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/login", `{"username":"stage@example.com","password":"curtain-call"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[authResp](t, rec)

	rec = s.do(t, "Bearer "+login.Access.Token, http.MethodGet, "/v1/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":`+jsonUint(reg.User.ID)+`,"username":"stage@example.com"}`, rec.Body.String())

	rec = s.do(t, "", http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+login.Refresh.Token+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decode[authResp](t, rec)
	assert.NotEqual(t, login.Refresh.Token, refreshed.Refresh.Token)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+login.Refresh.Token+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens are single use")

	rec = s.do(t, "", http.MethodPost, "/v1/auth/refresh", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/logout", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/logout", `{"refresh_token":"`+refreshed.Refresh.Token+`"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, "", http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+refreshed.Refresh.Token+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, "Bearer "+login.Access.Token, http.MethodPost, "/v1/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, "", http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+reg.Refresh.Token+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "bearer logout revokes every session")
}

func TestHealth(t *testing.T) {
	e := echo.New()
	router.RegisterRoutes(e, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	dal := testutil.NewStore(t)
	e := echo.New()
	router.RegisterRoutes(e, dal.DB())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, dal.Close())
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
