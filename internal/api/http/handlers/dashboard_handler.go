package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ST1000-S/iTechies/internal/api/dto"
	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/service"
	apperrors "github.com/ST1000-S/iTechies/pkg/util"
)

// DashboardHandler renders the role-specific dashboard payload: a
// customer sees their own requests plus the provider directory, a
// provider sees the open board and their accepted work.
type DashboardHandler struct {
	requests  *service.RequestService
	providers *service.ProviderService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(requestService *service.RequestService, providerService *service.ProviderService) *DashboardHandler {
	return &DashboardHandler{requests: requestService, providers: providerService}
}

// Show handles GET /dashboard (authenticated gate).
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	switch principal.Role {
	case domain.RoleCustomer:
		return h.customerBoard(c, principal.UserID)
	case domain.RoleProvider:
		return h.providerBoard(c, principal.UserID)
	default:
		return apperrors.NewUnauthorized("unknown role")
	}
}

func (h *DashboardHandler) customerBoard(c *fiber.Ctx, customerID string) error {
	requests, err := h.requests.ListForCustomer(c.UserContext(), customerID)
	if err != nil {
		return err
	}
	listings, err := h.providers.List(c.UserContext(), "", 0, 0)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"role":      domain.RoleCustomer,
		"requests":  dto.NewRequestResponses(requests),
		"providers": providerResponses(listings),
	}})
}

func (h *DashboardHandler) providerBoard(c *fiber.Ctx, providerID string) error {
	board, err := h.requests.ListForProvider(c.UserContext(), providerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"role":     domain.RoleProvider,
		"open":     dto.NewRequestResponses(board.Open),
		"accepted": dto.NewRequestResponses(board.Accepted),
	}})
}
