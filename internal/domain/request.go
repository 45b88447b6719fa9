package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusOpen     RequestStatus = "open"
	RequestStatusAccepted RequestStatus = "accepted"
	// RequestStatusCompleted is a declared future state; no operation
	// transitions into it yet.
	RequestStatusCompleted RequestStatus = "completed"
)

// ServiceRequest is the aggregate for customer job postings. The
// customer reference is set at creation and never changes. ProviderID is
// nil while the request is open and immutable once acceptance sets it;
// status only moves forward (open -> accepted -> completed).
type ServiceRequest struct {
	ID          string
	CustomerID  string
	Description string
	Status      RequestStatus
	ProviderID  *string
	CreatedAt   time.Time
}
