package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ST1000-S/iTechies/internal/api/dto"
	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/service"
	apperrors "github.com/ST1000-S/iTechies/pkg/util"
)

// ProvidersHandler exposes the provider directory and reviews.
type ProvidersHandler struct {
	service *service.ProviderService
}

// NewProvidersHandler constructs handler.
func NewProvidersHandler(providerService *service.ProviderService) *ProvidersHandler {
	return &ProvidersHandler{service: providerService}
}

// List handles GET /providers?q=... (authenticated gate).
func (h *ProvidersHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	listings, err := h.service.List(c.UserContext(), c.Query("q"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providerResponses(listings)})
}

// AddReview handles POST /providers/:id/reviews (customer gate).
func (h *ProvidersHandler) AddReview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	var req dto.AddReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	review, err := h.service.AddReview(c.UserContext(), principal.UserID, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ReviewResponse{
		ID:        review.ID,
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}})
}

func providerResponses(listings []service.ProviderListing) []dto.ProviderResponse {
	items := make([]dto.ProviderResponse, 0, len(listings))
	for i := range listings {
		provider := listings[i].Provider
		reviews := make([]dto.ReviewResponse, 0, len(listings[i].Reviews))
		for _, r := range listings[i].Reviews {
			reviews = append(reviews, dto.ReviewResponse{
				ID:        r.ID,
				AuthorID:  r.AuthorID,
				Rating:    r.Rating,
				Comment:   r.Comment,
				CreatedAt: r.CreatedAt,
			})
		}
		items = append(items, dto.ProviderResponse{
			ID:           provider.ID,
			Name:         provider.Name,
			Skills:       provider.Skills,
			Location:     provider.Location,
			Availability: provider.Availability,
			Reviews:      reviews,
		})
	}
	return items
}
