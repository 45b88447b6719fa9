package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/session"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	UserID string
	Role   domain.Role
	Token  string
}

// SessionMiddleware resolves the session cookie into a Principal. It
// never rejects on its own; the gates decide. A live session gets its
// TTL refreshed on every request.
type SessionMiddleware struct {
	sessions   session.Store
	cookieName string
	logger     *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions session.Store, cookieName string, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, cookieName: cookieName, logger: logger}
}

// Handle attaches the principal for downstream handlers when a valid
// session cookie is present.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token == "" {
		return c.Next()
	}

	sess, err := m.sessions.Get(c.UserContext(), token)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			m.logger.Warn("session lookup failed", zap.Error(err))
		}
		return c.Next()
	}

	if err := m.sessions.Touch(c.UserContext(), token); err != nil && !errors.Is(err, session.ErrNotFound) {
		m.logger.Warn("session touch failed", zap.Error(err))
	}

	c.Locals(principalKey, &Principal{UserID: sess.UserID, Role: sess.Role, Token: token})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
