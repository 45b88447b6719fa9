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

// RequestService coordinates the service-request lifecycle. Role checks
// happen at the route gates; this layer assumes the caller already holds
// the right role.
type RequestService struct {
	requests   repository.RequestRepository
	dispatcher events.Dispatcher
}

// NewRequestService constructs the service.
func NewRequestService(requests repository.RequestRepository, dispatcher events.Dispatcher) *RequestService {
	return &RequestService{requests: requests, dispatcher: dispatcher}
}

// Create opens a new request owned by the customer.
func (s *RequestService) Create(ctx context.Context, customerID, description string) (*domain.ServiceRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewFieldValidationError([]string{"description"})
	}

	request := &domain.ServiceRequest{
		CustomerID:  customerID,
		Description: description,
		Status:      domain.RequestStatusOpen,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventRequestCreated, events.Actor{UserID: customerID, Role: domain.RoleCustomer},
		events.RequestCreatedPayload{
			RequestID:   request.ID,
			CustomerID:  customerID,
			Description: request.Description,
		})

	return request, nil
}

// Accept transitions an open request to accepted on behalf of the
// provider. The store performs the compare-and-swap; of two racing
// providers exactly one succeeds and the other gets a conflict.
func (s *RequestService) Accept(ctx context.Context, providerID, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.requests.Accept(ctx, requestID, providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"id": requestID})
		}
		if errors.Is(err, repository.ErrNotOpen) {
			return nil, apperrors.NewConflict("request already accepted", map[string]any{"id": requestID})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRequestAccepted, events.Actor{UserID: providerID, Role: domain.RoleProvider},
		events.RequestAcceptedPayload{RequestID: request.ID, ProviderID: providerID})

	return request, nil
}

// ListForCustomer returns the customer's own requests, newest first.
func (s *RequestService) ListForCustomer(ctx context.Context, customerID string) ([]domain.ServiceRequest, error) {
	return s.requests.ListByCustomer(ctx, customerID)
}

// ProviderBoard bundles what a provider dashboard shows.
type ProviderBoard struct {
	Open     []domain.ServiceRequest
	Accepted []domain.ServiceRequest
}

// ListForProvider returns open requests plus the provider's accepted ones.
func (s *RequestService) ListForProvider(ctx context.Context, providerID string) (*ProviderBoard, error) {
	open, err := s.requests.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	accepted, err := s.requests.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return &ProviderBoard{Open: open, Accepted: accepted}, nil
}

func (s *RequestService) publish(ctx context.Context, eventType events.EventType, actor events.Actor, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
