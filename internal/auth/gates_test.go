package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/session"
)

const cookieName = "itechies_session"

func newGatedApp(t *testing.T, store session.Store) (*fiber.App, *int) {
	t.Helper()
	logger := zap.NewNop()
	middleware := auth.NewSessionMiddleware(store, cookieName, logger)
	gates := auth.NewGatekeeper(store, cookieName, logger)

	hits := 0
	app := fiber.New()
	app.Use(middleware.Handle)
	app.Get("/any", gates.RequireAuthenticated(), func(c *fiber.Ctx) error {
		hits++
		return c.SendString("ok")
	})
	app.Post("/customer-only", gates.RequireRole(domain.RoleCustomer), func(c *fiber.Ctx) error {
		hits++
		return c.SendString("ok")
	})
	return app, &hits
}

func request(method, target, token string, json bool) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	if json {
		req.Header.Set("Accept", "application/json")
	}
	return req
}

func TestRequireAuthenticated_NoSession(t *testing.T) {
	app, hits := newGatedApp(t, session.NewMemoryStore(time.Hour))

	resp, err := app.Test(request(http.MethodGet, "/any", "", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, *hits)

	// browser clients are redirected to the login page instead
	resp, err = app.Test(request(http.MethodGet, "/any", "", false))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Zero(t, *hits)
}

func TestRequireAuthenticated_ValidSession(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	app, hits := newGatedApp(t, store)

	sess, err := store.Create(context.Background(), "user-1", domain.RoleCustomer)
	require.NoError(t, err)

	resp, err := app.Test(request(http.MethodGet, "/any", sess.Token, true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, *hits)
}

func TestRequireRole_MismatchLooksLikeNotLoggedIn(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	app, hits := newGatedApp(t, store)

	sess, err := store.Create(context.Background(), "prov-1", domain.RoleProvider)
	require.NoError(t, err)

	noSession, err := app.Test(request(http.MethodPost, "/customer-only", "", true))
	require.NoError(t, err)
	wrongRole, err := app.Test(request(http.MethodPost, "/customer-only", sess.Token, true))
	require.NoError(t, err)

	// a role mismatch and a missing session are indistinguishable
	assert.Equal(t, noSession.StatusCode, wrongRole.StatusCode)
	assert.Zero(t, *hits)

	// and the mismatching session has been destroyed
	_, err = store.Get(context.Background(), sess.Token)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRequireRole_Match(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	app, hits := newGatedApp(t, store)

	sess, err := store.Create(context.Background(), "cust-1", domain.RoleCustomer)
	require.NoError(t, err)

	resp, err := app.Test(request(http.MethodPost, "/customer-only", sess.Token, true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, *hits)

	// the session survives a successful gate
	_, err = store.Get(context.Background(), sess.Token)
	assert.NoError(t, err)
}
