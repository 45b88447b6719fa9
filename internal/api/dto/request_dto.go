package dto

import (
	"time"

	"github.com/ST1000-S/iTechies/internal/domain"
)

// CreateRequestRequest payload for posting a service request.
type CreateRequestRequest struct {
	Description string `json:"description" form:"description"`
}

// RequestResponse is the wire view of a service request.
type RequestResponse struct {
	ID          string               `json:"id"`
	CustomerID  string               `json:"customer_id"`
	Description string               `json:"description"`
	Status      domain.RequestStatus `json:"status"`
	ProviderID  *string              `json:"provider_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewRequestResponse maps a domain request.
func NewRequestResponse(request *domain.ServiceRequest) RequestResponse {
	return RequestResponse{
		ID:          request.ID,
		CustomerID:  request.CustomerID,
		Description: request.Description,
		Status:      request.Status,
		ProviderID:  request.ProviderID,
		CreatedAt:   request.CreatedAt,
	}
}

// NewRequestResponses maps a slice of domain requests.
func NewRequestResponses(requests []domain.ServiceRequest) []RequestResponse {
	items := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, NewRequestResponse(&requests[i]))
	}
	return items
}

// AddReviewRequest payload for reviewing a provider.
type AddReviewRequest struct {
	Rating  int    `json:"rating" form:"rating"`
	Comment string `json:"comment" form:"comment"`
}

// ReviewResponse is the wire view of a review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderResponse is a directory entry with reviews attached; this is
// the data the client-side search widget indexes.
type ProviderResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Skills       []string         `json:"skills"`
	Location     string           `json:"location"`
	Availability string           `json:"availability,omitempty"`
	Reviews      []ReviewResponse `json:"reviews"`
}
