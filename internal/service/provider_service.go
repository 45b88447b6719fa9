package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/events"
	"github.com/ST1000-S/iTechies/internal/repository"
	apperrors "github.com/ST1000-S/iTechies/pkg/util"
)

// ProviderService serves the provider directory that feeds the
// client-side search widget, plus review submission.
type ProviderService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewProviderService constructs the service.
func NewProviderService(users repository.UserRepository, dispatcher events.Dispatcher) *ProviderService {
	return &ProviderService{users: users, dispatcher: dispatcher}
}

// ProviderListing is a provider with its reviews attached.
type ProviderListing struct {
	Provider domain.User
	Reviews  []domain.Review
}

// List returns providers matching an optional free-text term across
// name, skills and location.
func (s *ProviderService) List(ctx context.Context, searchTerm string, limit, offset int) ([]ProviderListing, error) {
	filter := repository.ProviderFilter{Limit: limit, Offset: offset}
	if term := strings.TrimSpace(searchTerm); term != "" {
		filter.SearchTerm = &term
	}

	providers, err := s.users.ListProviders(ctx, filter)
	if err != nil {
		return nil, err
	}

	listings := make([]ProviderListing, 0, len(providers))
	for i := range providers {
		reviews, err := s.users.ListReviews(ctx, providers[i].ID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, ProviderListing{Provider: providers[i], Reviews: reviews})
	}
	return listings, nil
}

// AddReview appends a customer review to a provider. Reviews are never
// edited or removed once written.
func (s *ProviderService) AddReview(ctx context.Context, authorID, providerID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewFieldValidationError([]string{"rating"})
	}

	provider, err := s.users.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("provider", map[string]any{"id": providerID})
		}
		return nil, err
	}
	if provider.Role != domain.RoleProvider {
		return nil, apperrors.NewNotFound("provider", map[string]any{"id": providerID})
	}

	review := &domain.Review{
		ProviderID: providerID,
		AuthorID:   authorID,
		Rating:     rating,
		Comment:    comment,
	}
	if err := s.users.AddReview(ctx, review); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("provider", map[string]any{"id": providerID})
		}
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReviewAdded,
			Actor:     events.Actor{UserID: authorID, Role: domain.RoleCustomer},
			Timestamp: time.Now(),
			Payload: events.ReviewAddedPayload{
				ReviewID:   review.ID,
				ProviderID: providerID,
				Rating:     rating,
			},
		})
	}

	return review, nil
}
