package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ST1000-S/iTechies/internal/domain"
)

// ErrNotOpen is returned when an acceptance loses the status
// compare-and-swap: the request exists but is no longer open.
var ErrNotOpen = errors.New("request is not open")

const foreignKeyViolation = "23503"

// RequestRepository encapsulates service request persistence.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	Accept(ctx context.Context, id, providerID string) (*domain.ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.ServiceRequest, error)
	ListByProvider(ctx context.Context, providerID string) ([]domain.ServiceRequest, error)
	ListOpen(ctx context.Context) ([]domain.ServiceRequest, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (customer_id, description, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		request.CustomerID,
		request.Description,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	const query = `
        SELECT id, customer_id, description, status, provider_id, created_at
        FROM service_requests WHERE id=$1`

	var request domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.CustomerID,
		&request.Description,
		&request.Status,
		&request.ProviderID,
		&request.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

// Accept transitions open -> accepted with a conditional update keyed on
// status, so two racing providers cannot both win. The follow-up read
// only classifies a lost swap as not-found vs not-open.
func (r *requestRepository) Accept(ctx context.Context, id, providerID string) (*domain.ServiceRequest, error) {
	const query = `
        UPDATE service_requests SET status=$1, provider_id=$2
        WHERE id=$3 AND status=$4
        RETURNING id, customer_id, description, status, provider_id, created_at`

	var request domain.ServiceRequest
	err := r.pool.QueryRow(ctx, query,
		domain.RequestStatusAccepted,
		providerID,
		id,
		domain.RequestStatusOpen,
	).Scan(
		&request.ID,
		&request.CustomerID,
		&request.Description,
		&request.Status,
		&request.ProviderID,
		&request.CreatedAt,
	)
	if err == nil {
		return &request, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrNotOpen
}

func (r *requestRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.ServiceRequest, error) {
	const query = `
        SELECT id, customer_id, description, status, provider_id, created_at
        FROM service_requests WHERE customer_id=$1
        ORDER BY created_at DESC`
	return r.list(ctx, query, customerID)
}

func (r *requestRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.ServiceRequest, error) {
	const query = `
        SELECT id, customer_id, description, status, provider_id, created_at
        FROM service_requests WHERE provider_id=$1
        ORDER BY created_at DESC`
	return r.list(ctx, query, providerID)
}

func (r *requestRepository) ListOpen(ctx context.Context) ([]domain.ServiceRequest, error) {
	const query = `
        SELECT id, customer_id, description, status, provider_id, created_at
        FROM service_requests WHERE status=$1
        ORDER BY created_at DESC`
	return r.list(ctx, query, domain.RequestStatusOpen)
}

func (r *requestRepository) list(ctx context.Context, query string, arg any) ([]domain.ServiceRequest, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []domain.ServiceRequest{}
	for rows.Next() {
		var request domain.ServiceRequest
		if err := rows.Scan(
			&request.ID,
			&request.CustomerID,
			&request.Description,
			&request.Status,
			&request.ProviderID,
			&request.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}
