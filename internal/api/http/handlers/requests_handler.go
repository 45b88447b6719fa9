package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ST1000-S/iTechies/internal/api/dto"
	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/service"
	apperrors "github.com/ST1000-S/iTechies/pkg/util"
)

// RequestsHandler manages the service-request lifecycle endpoints. Role
// enforcement happens at the route gates; handlers only need the
// principal's identity.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Create handles POST /service-requests (customer gate).
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.Create(c.UserContext(), principal.UserID, req.Description)
	if err != nil {
		return err
	}

	if !auth.WantsJSON(c) {
		return c.Redirect("/dashboard", http.StatusSeeOther)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestResponse(request)})
}

// Accept handles POST /service-requests/:id/accept (provider gate).
func (h *RequestsHandler) Accept(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}

	request, err := h.service.Accept(c.UserContext(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}

	if !auth.WantsJSON(c) {
		return c.Redirect("/dashboard", http.StatusSeeOther)
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestResponse(request)})
}
