package events

import (
	"time"

	"github.com/ST1000-S/iTechies/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventRequestCreated  EventType = "request_created"
	EventRequestAccepted EventType = "request_accepted"
	EventReviewAdded     EventType = "review_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	RequestID   string `json:"request_id"`
	CustomerID  string `json:"customer_id"`
	Description string `json:"description"`
}

// RequestAcceptedPayload payload.
type RequestAcceptedPayload struct {
	RequestID  string `json:"request_id"`
	ProviderID string `json:"provider_id"`
}

// ReviewAddedPayload payload.
type ReviewAddedPayload struct {
	ReviewID   string `json:"review_id"`
	ProviderID string `json:"provider_id"`
	Rating     int    `json:"rating"`
}
