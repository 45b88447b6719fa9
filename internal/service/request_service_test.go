package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/repository"
	"github.com/ST1000-S/iTechies/internal/service"
	apperrors "github.com/ST1000-S/iTechies/pkg/util"
)

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) Accept(ctx context.Context, id, providerID string) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, id, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.ServiceRequest, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.ServiceRequest, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).([]domain.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) ListOpen(ctx context.Context) ([]domain.ServiceRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ServiceRequest), args.Error(1)
}

func TestCreate_EmptyDescription(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := service.NewRequestService(mockRepo, nil)

	_, err := svc.Create(context.Background(), "cust-1", "   ")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.ElementsMatch(t, []string{"description"}, domainErr.Details["fields"])
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_OpensRequestForCustomer(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := service.NewRequestService(mockRepo, nil)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ServiceRequest")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.ServiceRequest).ID = "req-1"
		}).
		Return(nil)

	request, err := svc.Create(context.Background(), "cust-1", "fix my laptop")

	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusOpen, request.Status)
	assert.Equal(t, "cust-1", request.CustomerID)
	assert.Nil(t, request.ProviderID)
	mockRepo.AssertExpectations(t)
}

func TestAccept_NotFound(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := service.NewRequestService(mockRepo, nil)

	mockRepo.On("Accept", mock.Anything, "missing", "prov-1").Return(nil, pgx.ErrNoRows)

	_, err := svc.Accept(context.Background(), "prov-1", "missing")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestAccept_AlreadyAccepted(t *testing.T) {
	mockRepo := new(MockRequestRepository)
	svc := service.NewRequestService(mockRepo, nil)

	mockRepo.On("Accept", mock.Anything, "req-1", mock.AnythingOfType("string")).
		Return(nil, repository.ErrNotOpen)

	_, err := svc.Accept(context.Background(), "prov-2", "req-1")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

// casRequestRepository implements the status compare-and-swap the real
// store performs, so the race below exercises the same contract.
type casRequestRepository struct {
	mu      sync.Mutex
	request *domain.ServiceRequest
}

func (r *casRequestRepository) Create(context.Context, *domain.ServiceRequest) error { return nil }

func (r *casRequestRepository) GetByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.request == nil || r.request.ID != id {
		return nil, pgx.ErrNoRows
	}
	copied := *r.request
	return &copied, nil
}

func (r *casRequestRepository) Accept(_ context.Context, id, providerID string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.request == nil || r.request.ID != id {
		return nil, pgx.ErrNoRows
	}
	if r.request.Status != domain.RequestStatusOpen {
		return nil, repository.ErrNotOpen
	}
	r.request.Status = domain.RequestStatusAccepted
	r.request.ProviderID = &providerID
	copied := *r.request
	return &copied, nil
}

func (r *casRequestRepository) ListByCustomer(context.Context, string) ([]domain.ServiceRequest, error) {
	return nil, nil
}

func (r *casRequestRepository) ListByProvider(context.Context, string) ([]domain.ServiceRequest, error) {
	return nil, nil
}

func (r *casRequestRepository) ListOpen(context.Context) ([]domain.ServiceRequest, error) {
	return nil, nil
}

func TestAccept_ConcurrentProviders_ExactlyOneWins(t *testing.T) {
	repo := &casRequestRepository{
		request: &domain.ServiceRequest{ID: "req-1", CustomerID: "cust-1", Status: domain.RequestStatusOpen},
	}
	svc := service.NewRequestService(repo, nil)

	type outcome struct {
		request *domain.ServiceRequest
		err     error
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup
	for _, providerID := range []string{"prov-1", "prov-2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			request, err := svc.Accept(context.Background(), id, "req-1")
			results <- outcome{request: request, err: err}
		}(providerID)
	}
	wg.Wait()
	close(results)

	var winners, conflicts int
	var winner *domain.ServiceRequest
	for res := range results {
		if res.err == nil {
			winners++
			winner = res.request
			continue
		}
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, res.err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
		conflicts++
	}

	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, conflicts)
	require.NotNil(t, winner)
	assert.Equal(t, domain.RequestStatusAccepted, winner.Status)
	require.NotNil(t, winner.ProviderID)

	final, err := repo.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, *winner.ProviderID, *final.ProviderID)
}
