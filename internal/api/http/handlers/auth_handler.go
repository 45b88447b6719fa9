package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ST1000-S/iTechies/internal/api/dto"
	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/config"
	"github.com/ST1000-S/iTechies/internal/service"
	"github.com/ST1000-S/iTechies/internal/session"
	apperrors "github.com/ST1000-S/iTechies/pkg/util"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	auth       *service.AuthService
	sessionCfg config.SessionConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessionCfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: authService, sessionCfg: sessionCfg}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, sess, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Skills:       normalizeSkills(req.Skills),
		Location:     req.Location,
		Availability: req.Availability,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, sess)
	if !auth.WantsJSON(c) {
		return c.Redirect("/dashboard", http.StatusSeeOther)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewInvalidCredentials()
	}

	user, sess, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, sess)
	if !auth.WantsJSON(c) {
		return c.Redirect("/dashboard", http.StatusSeeOther)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Logout handles GET /logout. Destruction is best-effort; the client is
// redirected home regardless.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		h.auth.Logout(c.UserContext(), principal.Token)
	}
	auth.ClearSessionCookie(c, h.sessionCfg.CookieName)
	if !auth.WantsJSON(c) {
		return c.Redirect("/", http.StatusSeeOther)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, sess *session.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    sess.Token,
		Expires:  time.Now().Add(h.sessionCfg.TTL()),
		HTTPOnly: true,
		Secure:   h.sessionCfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// normalizeSkills splits a single comma-separated form value into the
// list the domain expects.
func normalizeSkills(skills []string) []string {
	if len(skills) == 1 && strings.Contains(skills[0], ",") {
		parts := strings.Split(skills[0], ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return skills
}
