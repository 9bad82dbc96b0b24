package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"agroledger/internal/caching"
	"agroledger/internal/common"
	"agroledger/internal/services"
	"agroledger/testhelpers"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func setupProtected(t *testing.T) (*echo.Echo, services.AuthService) {
	t.Helper()
	store := testhelpers.NewMemStore()
	auth := services.NewAuthService(store.Repos().Users, caching.NewLocalCacheService(), testSecret, 600, 3600)
	require.NoError(t, auth.EnsureUser(context.Background(), "clerk", "clerk@agroledger.local", "pw", "Clerk", "staff"))

	e := echo.New()
	vm := NewVersionMiddleware()
	api := vm.VersionRoute(e, "/api", "v1")
	api.Use(echojwt.WithConfig(JWTConfig(testSecret, nil)), TokenContext(auth))
	api.GET("/whoami", func(c echo.Context) error {
		userID, _ := common.GetUserIDFromContext(c.Request().Context())
		return c.String(http.StatusOK, userID.String())
	})
	return e, auth
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWT_MissingToken(t *testing.T) {
	e, _ := setupProtected(t)

	rec := get(e, "/api/v1/whoami", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestJWT_ValidTokenSetsUser(t *testing.T) {
	e, auth := setupProtected(t)
	tokens, user, err := auth.Login(context.Background(), "clerk@agroledger.local", "pw")
	require.NoError(t, err)

	rec := get(e, "/api/v1/whoami", tokens.AccessToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID.String(), rec.Body.String())
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}

func TestJWT_RevokedTokenRejected(t *testing.T) {
	e, auth := setupProtected(t)
	ctx := context.Background()
	tokens, _, err := auth.Login(ctx, "clerk@agroledger.local", "pw")
	require.NoError(t, err)
	claims, err := auth.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	require.NoError(t, auth.RevokeAccessToken(ctx, claims))

	rec := get(e, "/api/v1/whoami", tokens.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWT_ForeignSecretRejected(t *testing.T) {
	e, _ := setupProtected(t)
	store := testhelpers.NewMemStore()
	other := services.NewAuthService(store.Repos().Users, caching.NewLocalCacheService(), "other-secret", 600, 3600)
	require.NoError(t, other.EnsureUser(context.Background(), "x", "x@agroledger.local", "pw", "X", "admin"))
	tokens, _, err := other.Login(context.Background(), "x@agroledger.local", "pw")
	require.NoError(t, err)

	rec := get(e, "/api/v1/whoami", tokens.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
