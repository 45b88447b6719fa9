package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/ST1000-S/iTechies/internal/api/http"
	"github.com/ST1000-S/iTechies/internal/api/http/handlers"
	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/config"
	"github.com/ST1000-S/iTechies/internal/domain"
	"github.com/ST1000-S/iTechies/internal/observability"
	"github.com/ST1000-S/iTechies/internal/persistence"
	"github.com/ST1000-S/iTechies/internal/repository"
	"github.com/ST1000-S/iTechies/internal/service"
	"github.com/ST1000-S/iTechies/internal/session"
)

// fakeUserRepo mimics the Postgres account store, including the unique
// email constraint being the authority on duplicates.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	reviews map[string][]domain.Review
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}, reviews: map[string][]domain.Review{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.byID[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListProviders(_ context.Context, filter repository.ProviderFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	providers := []domain.User{}
	for _, user := range r.byID {
		if user.Role != domain.RoleProvider {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(*filter.SearchTerm)
			haystack := strings.ToLower(user.Name + " " + user.Location + " " + strings.Join(user.Skills, " "))
			if !strings.Contains(haystack, term) {
				continue
			}
		}
		providers = append(providers, *user)
	}
	return providers, nil
}

func (r *fakeUserRepo) AddReview(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = uuid.NewString()
	review.CreatedAt = time.Now()
	r.reviews[review.ProviderID] = append(r.reviews[review.ProviderID], *review)
	return nil
}

func (r *fakeUserRepo) ListReviews(_ context.Context, providerID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Review{}, r.reviews[providerID]...), nil
}

// fakeRequestRepo mimics the request store's conditional accept.
type fakeRequestRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.ServiceRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byID: map[string]*domain.ServiceRequest{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, request *domain.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = uuid.NewString()
	request.CreatedAt = time.Now()
	copied := *request
	r.byID[request.ID] = &copied
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (r *fakeRequestRepo) Accept(_ context.Context, id, providerID string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if request.Status != domain.RequestStatusOpen {
		return nil, repository.ErrNotOpen
	}
	request.Status = domain.RequestStatusAccepted
	request.ProviderID = &providerID
	copied := *request
	return &copied, nil
}

func (r *fakeRequestRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := []domain.ServiceRequest{}
	for _, request := range r.byID {
		if request.CustomerID == customerID {
			requests = append(requests, *request)
		}
	}
	return requests, nil
}

func (r *fakeRequestRepo) ListByProvider(_ context.Context, providerID string) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := []domain.ServiceRequest{}
	for _, request := range r.byID {
		if request.ProviderID != nil && *request.ProviderID == providerID {
			requests = append(requests, *request)
		}
	}
	return requests, nil
}

func (r *fakeRequestRepo) ListOpen(_ context.Context) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := []domain.ServiceRequest{}
	for _, request := range r.byID {
		if request.Status == domain.RequestStatusOpen {
			requests = append(requests, *request)
		}
	}
	return requests, nil
}

type testEnv struct {
	app      *fiber.App
	users    *fakeUserRepo
	requests *fakeRequestRepo
	sessions *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		App:       config.AppConfig{Name: "itechies-test", Version: "test", RequestTimeoutSeconds: 5},
		Auth:      config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Session:   config.SessionConfig{CookieName: "itechies_session", TTLHours: 24},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 15},
	}
	logger := zap.NewNop()
	users := newFakeUserRepo()
	requests := newFakeRequestRepo()
	sessions := session.NewMemoryStore(cfg.Session.TTL())

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: users,
		Sessions: sessions,
		Logger:   logger,
	})
	requestService := service.NewRequestService(requests, nil)
	providerService := service.NewProviderService(users, nil)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), cfg)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, &persistence.Postgres{}, &persistence.Redis{}),
		Auth:      handlers.NewAuthHandler(authService, cfg.Session),
		Dashboard: handlers.NewDashboardHandler(requestService, providerService),
		Requests:  handlers.NewRequestsHandler(requestService),
		Providers: handlers.NewProvidersHandler(providerService),
		Sessions:  auth.NewSessionMiddleware(sessions, cfg.Session.CookieName, logger),
		Gates:     auth.NewGatekeeper(sessions, cfg.Session.CookieName, logger),
	})

	return &testEnv{app: app, users: users, requests: requests, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, target, cookie string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "itechies_session", Value: cookie})
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "itechies_session" && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

func TestEndToEnd_RegisterCreateAccept(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Ann", "email": "ann@x.com", "password": "pw123456", "role": "customer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	annCookie := sessionCookie(t, resp)

	resp, body = env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Bo", "email": "bo@x.com", "password": "pw123456", "role": "provider",
		"skills": []string{"repair"}, "location": "NYC",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	resp, _ = env.do(t, http.MethodPost, "/login", "", map[string]any{
		"email": "bo@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	boCookie := sessionCookie(t, resp)

	resp, body = env.do(t, http.MethodPost, "/service-requests", annCookie, map[string]any{
		"description": "fix my laptop",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "open", created["status"])
	requestID := created["id"].(string)

	resp, body = env.do(t, http.MethodPost, "/service-requests/"+requestID+"/accept", boCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	accepted := body["data"].(map[string]any)
	assert.Equal(t, "accepted", accepted["status"])
	assert.Equal(t, "fix my laptop", accepted["description"])
	require.NotNil(t, accepted["provider_id"])

	final, err := env.requests.GetByID(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAccepted, final.Status)
	assert.Equal(t, accepted["provider_id"].(string), *final.ProviderID)
	assert.Equal(t, created["customer_id"].(string), final.CustomerID)
}

func TestRegister_ValidationErrorsCarryFieldList(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"role": "provider", "email": "p@x.com",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errObj["code"])
	fields := errObj["details"].(map[string]any)["fields"].([]any)
	assert.ElementsMatch(t, []any{"name", "password", "skills", "location"}, fields)

	// and nothing was persisted
	_, err := env.users.GetByEmail(context.Background(), "p@x.com")
	assert.Error(t, err)
}

func TestRegister_SecondEmailRejected(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]any{
		"name": "Ann", "email": "ann@x.com", "password": "pw123456", "role": "customer",
	}
	resp, _ := env.do(t, http.MethodPost, "/register", "", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/register", "", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_TAKEN", body["error"].(map[string]any)["code"])
}

func TestCreateRequest_ProviderBlockedByGate(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Bo", "email": "bo@x.com", "password": "pw123456", "role": "provider",
		"skills": []string{"repair"}, "location": "NYC",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	boCookie := sessionCookie(t, resp)

	resp, _ = env.do(t, http.MethodPost, "/service-requests", boCookie, map[string]any{
		"description": "should never land",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// the gate rejected before the lifecycle service ran
	open, err := env.requests.ListOpen(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open)

	// and the mismatching session was destroyed
	resp, _ = env.do(t, http.MethodGet, "/dashboard", boCookie, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccept_NotFoundAndConflict(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Ann", "email": "ann@x.com", "password": "pw123456", "role": "customer",
	})
	annCookie := sessionCookie(t, resp)
	resp, _ = env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Bo", "email": "bo@x.com", "password": "pw123456", "role": "provider",
		"skills": []string{"repair"}, "location": "NYC",
	})
	boCookie := sessionCookie(t, resp)
	resp, _ = env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Cy", "email": "cy@x.com", "password": "pw123456", "role": "provider",
		"skills": []string{"plumbing"}, "location": "LA",
	})
	cyCookie := sessionCookie(t, resp)

	resp, body := env.do(t, http.MethodPost, "/service-requests/"+uuid.NewString()+"/accept", boCookie, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])

	resp, body = env.do(t, http.MethodPost, "/service-requests", annCookie, map[string]any{
		"description": "fix my sink",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID := body["data"].(map[string]any)["id"].(string)

	resp, _ = env.do(t, http.MethodPost, "/service-requests/"+requestID+"/accept", boCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// a second provider hits a conflict, whoever they are
	resp, body = env.do(t, http.MethodPost, "/service-requests/"+requestID+"/accept", cyCookie, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", body["error"].(map[string]any)["code"])
}

func TestProviders_DirectoryAndSearch(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Ann", "email": "ann@x.com", "password": "pw123456", "role": "customer",
	})
	annCookie := sessionCookie(t, resp)
	resp, _ = env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Bo", "email": "bo@x.com", "password": "pw123456", "role": "provider",
		"skills": []string{"Laptop Repair"}, "location": "NYC",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/providers?q=laptop", annCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]any), 1)

	resp, body = env.do(t, http.MethodGet, "/providers?q=gardening", annCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"].([]any))
}

func TestLogout_DestroysSession(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/register", "", map[string]any{
		"name": "Ann", "email": "ann@x.com", "password": "pw123456", "role": "customer",
	})
	annCookie := sessionCookie(t, resp)

	resp, _ = env.do(t, http.MethodGet, "/logout", annCookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/dashboard", annCookie, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// logging out again with the dead cookie is harmless
	resp, _ = env.do(t, http.MethodGet, "/logout", annCookie, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
