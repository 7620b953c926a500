package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository/memory"
	apperrors "github.com/khushboocodes/QuickDesk/pkg/util/errorutil"
)

type fakeDenylist map[string]bool

func (d fakeDenylist) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	d[tokenID] = true
	return nil
}

func (d fakeDenylist) IsRevoked(_ context.Context, tokenID string) bool {
	return d[tokenID]
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	user := &domain.User{ID: "u-1", Role: domain.RoleSupportAgent}

	token, session, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, session.TokenID)
	assert.Equal(t, "u-1", session.UserID)
	assert.WithinDuration(t, session.IssuedAt.Add(15*time.Minute), session.ExpiresAt, time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupportAgent, claims.Role)
	assert.Equal(t, session.TokenID, claims.Session().TokenID)
}

func TestParseTokenRejectsForeignAndExpired(t *testing.T) {
	user := &domain.User{ID: "u-1", Role: domain.RoleEndUser}
	token, _, err := NewTokenManager("other", 15).GenerateToken(user)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", 15).ParseToken(token)
	assert.Error(t, err)

	tm := NewTokenManager("secret", 1)
	token, _, err = tm.GenerateToken(user)
	require.NoError(t, err)
	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("long enough"))

	hash, err := HashPassword("long enough", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "long enough"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}

func newApp(t *testing.T) (*fiber.App, *TokenManager, *domain.User, fakeDenylist) {
	t.Helper()
	store := memory.NewStore()
	user := &domain.User{Email: "ana@example.com", Role: domain.RoleAdmin}
	require.NoError(t, store.Users().Create(context.Background(), user))

	tm := NewTokenManager("secret", 15)
	denylist := fakeDenylist{}
	mw := NewAuthMiddleware(tm, store.Users(), denylist)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/private", mw.Handle, func(c *fiber.Ctx) error {
		return c.SendString(string(RoleOf(c)))
	})
	app.Get("/optional", mw.Optional, func(c *fiber.Ctx) error {
		return c.SendString("role=" + string(RoleOf(c)))
	})
	return app, tm, user, denylist
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMiddlewareLoadsPrincipal(t *testing.T) {
	app, tm, user, _ := newApp(t)
	token, _, err := tm.GenerateToken(user)
	require.NoError(t, err)

	status, body := get(t, app, "/private", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin", body)

	status, _ = get(t, app, "/private", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = get(t, app, "/private", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestMiddlewareRejectsRevokedAndUnknownUsers(t *testing.T) {
	app, tm, user, denylist := newApp(t)
	token, session, err := tm.GenerateToken(user)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), session.TokenID, time.Minute))

	status, _ := get(t, app, "/private", token)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	ghost, _, err := tm.GenerateToken(&domain.User{ID: "ghost", Role: domain.RoleAdmin})
	require.NoError(t, err)
	status, _ = get(t, app, "/private", ghost)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestOptionalMiddlewareFallsBackToAnonymous(t *testing.T) {
	app, tm, user, _ := newApp(t)

	status, body := get(t, app, "/optional", "garbage")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "role=", body)

	token, _, err := tm.GenerateToken(user)
	require.NoError(t, err)
	_, body = get(t, app, "/optional", token)
	assert.Equal(t, "role=admin", body)
}
