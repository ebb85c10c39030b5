package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finance-dashboard/backend/internal/models"
	"example.com/finance-dashboard/backend/internal/repository"
)

type fakeUsers map[uuid.UUID]models.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	user, ok := f[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

// TestAdminMiddleware проверяет доступ по списку email.
func TestAdminMiddleware(t *testing.T) {
	admin := models.User{ID: uuid.New(), Email: "Admin@Example.com"}
	member := models.User{ID: uuid.New(), Email: "member@example.com"}
	users := fakeUsers{admin.ID: admin, member.ID: member}

	next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	mw := AdminMiddleware(users, []string{" admin@example.com "})

	c, rec := newRequestContext(http.MethodGet, "/api/v1/admin/users", nil, admin.ID)
	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newRequestContext(http.MethodGet, "/api/v1/admin/users", nil, member.ID)
	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newRequestContext(http.MethodGet, "/api/v1/admin/users", nil, uuid.New())
	require.NoError(t, mw(next)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newRequestContext(http.MethodGet, "/api/v1/admin/users", nil, admin.ID)
	require.NoError(t, AdminMiddleware(users, nil)(next)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestParsePagination проверяет лимиты и смещение.
func TestParsePagination(t *testing.T) {
	c, _ := newRequestContext(http.MethodGet, "/?limit=500&offset=20", nil, uuid.New())
	limit, offset, err := parsePagination(c, 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 200, limit)
	assert.Equal(t, 20, offset)

	c, _ = newRequestContext(http.MethodGet, "/?limit=-1", nil, uuid.New())
	_, _, err = parsePagination(c, 50, 200)
	assert.Error(t, err)

	c, _ = newRequestContext(http.MethodGet, "/?offset=x", nil, uuid.New())
	_, _, err = parsePagination(c, 50, 200)
	assert.Error(t, err)
}

// TestValidateHexColor проверяет валидацию hex-цвета.
func TestValidateHexColor(t *testing.T) {
	value, err := validateHexColor(" #AABBCC ")
	require.NoError(t, err)
	assert.Equal(t, "#AABBCC", value)

	_, err = validateHexColor("AABBCC")
	assert.Error(t, err)

	_, err = validateHexColor("#XYZ123")
	assert.Error(t, err)
}
