package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/session"
)

// Gatekeeper builds the route gates. A failed gate never explains why:
// a missing session and a role mismatch produce the identical outcome.
type Gatekeeper struct {
	sessions   session.Store
	cookieName string
	logger     *zap.Logger
}

// NewGatekeeper constructs the gate factory.
func NewGatekeeper(sessions session.Store, cookieName string, logger *zap.Logger) *Gatekeeper {
	return &Gatekeeper{sessions: sessions, cookieName: cookieName, logger: logger}
}

// RequireAuthenticated passes through when a valid session is attached.
func (g *Gatekeeper) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return unauthenticated(c)
		}
		return c.Next()
	}
}

// RequireRole passes through only when the session role matches. On
// mismatch the session is destroyed and the response is the same as
// "not logged in"; wrong-role callers learn nothing about the route.
func (g *Gatekeeper) RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return unauthenticated(c)
		}
		if principal.Role != role {
			if err := g.sessions.Destroy(c.UserContext(), principal.Token); err != nil {
				g.logger.Warn("session destroy failed", zap.Error(err))
			}
			ClearSessionCookie(c, g.cookieName)
			return unauthenticated(c)
		}
		return c.Next()
	}
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func unauthenticated(c *fiber.Ctx) error {
	if WantsJSON(c) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": fiber.Map{
			"code":    "UNAUTHORIZED",
			"message": http.StatusText(http.StatusUnauthorized),
		}})
	}
	return c.Redirect("/login", http.StatusSeeOther)
}

// WantsJSON reports whether the client negotiated a JSON response
// rather than a browser form flow.
func WantsJSON(c *fiber.Ctx) bool {
	accept := c.Get(fiber.HeaderAccept)
	if strings.Contains(accept, fiber.MIMEApplicationJSON) {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}
