package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", "finance-dashboard", time.Minute, time.Hour)
}

// TestTokenPairTypes проверяет, что access и refresh токены не взаимозаменяемы.
func TestTokenPairTypes(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()
	refreshID := uuid.New()

	pair, err := manager.NewTokenPair(userID, refreshID)
	require.NoError(t, err)

	claims, err := manager.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)

	refreshClaims, err := manager.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, refreshID.String(), refreshClaims.ID)

	_, err = manager.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenType)
}

// TestTokenWrongIssuer проверяет отказ для токена чужого издателя.
func TestTokenWrongIssuer(t *testing.T) {
	other := NewTokenManager("test-secret", "someone-else", time.Minute, time.Hour)
	pair, err := other.NewTokenPair(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = newTestManager().ParseAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

// TestPasswordRoundTrip проверяет хэширование пароля.
func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidCredentials)
}

// TestCompareTokenHash проверяет сравнение хэша refresh-токена.
func TestCompareTokenHash(t *testing.T) {
	hash := HashToken("token-value")
	assert.True(t, CompareTokenHash(hash, "token-value"))
	assert.False(t, CompareTokenHash(hash, "other"))
}

func runMiddleware(t *testing.T, manager *TokenManager, req *http.Request, opts ...MiddlewareOption) (uuid.UUID, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uuid.UUID
	handler := JWTMiddleware(manager, opts...)(func(c echo.Context) error {
		seen, _ = UserIDFromContext(c)
		return c.NoContent(http.StatusNoContent)
	})

	return seen, handler(c)
}

// TestJWTMiddlewareHeader проверяет авторизацию через заголовок.
func TestJWTMiddlewareHeader(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()
	pair, err := manager.NewTokenPair(userID, uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	seen, err := runMiddleware(t, manager, req)
	require.NoError(t, err)
	assert.Equal(t, userID, seen)
}

// TestJWTMiddlewareQueryToken проверяет, что query-токен принимается только при явном разрешении.
func TestJWTMiddlewareQueryToken(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()
	pair, err := manager.NewTokenPair(userID, uuid.New())
	require.NoError(t, err)

	target := "/stream?" + QueryTokenParam + "=" + pair.AccessToken

	_, err = runMiddleware(t, manager, httptest.NewRequest(http.MethodGet, target, nil))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	seen, err := runMiddleware(t, manager, httptest.NewRequest(http.MethodGet, target, nil), AllowQueryToken())
	require.NoError(t, err)
	assert.Equal(t, userID, seen)
}

// TestJWTMiddlewareMalformedHeader проверяет отказ для неверной схемы авторизации.
func TestJWTMiddlewareMalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")

	_, err := runMiddleware(t, newTestManager(), req)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
