package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ST1000-S/iTechies/internal/config"
	"github.com/ST1000-S/iTechies/internal/observability"
)

// Manual end-to-end smoke test against a running server: registers a
// customer and a provider, logs both in, posts a request as the
// customer, accepts it as the provider and verifies the final state.
// Each actor gets its own cookie jar so the session flows mirror two
// real browsers.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	baseURL := os.Getenv("SMOKETEST_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.App.Port
	}

	suffix := time.Now().UnixNano()
	customerEmail := fmt.Sprintf("customer%d@test.com", suffix)
	providerEmail := fmt.Sprintf("provider%d@test.com", suffix)

	customer := newClient()
	provider := newClient()

	run := func(step string, err error) {
		if err != nil {
			logger.Fatal("smoke test failed", zap.String("step", step), zap.Error(err))
		}
		logger.Info("step ok", zap.String("step", step))
	}

	run("register customer", postJSON(customer, baseURL+"/register", map[string]any{
		"name":     "Customer1",
		"email":    customerEmail,
		"password": "password123",
		"role":     "customer",
	}, nil))

	run("register provider", postJSON(provider, baseURL+"/register", map[string]any{
		"name":     "Provider1",
		"email":    providerEmail,
		"password": "password123",
		"role":     "provider",
		"skills":   []string{"JavaScript", "Node.js"},
		"location": "New York",
	}, nil))

	run("login customer", postJSON(customer, baseURL+"/login", map[string]any{
		"email":    customerEmail,
		"password": "password123",
	}, nil))

	run("login provider", postJSON(provider, baseURL+"/login", map[string]any{
		"email":    providerEmail,
		"password": "password123",
	}, nil))

	var created struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	run("create request", postJSON(customer, baseURL+"/service-requests", map[string]any{
		"description": "fix my laptop",
	}, &created))
	if created.Data.Status != "open" {
		logger.Fatal("unexpected status after create", zap.String("status", created.Data.Status))
	}

	var accepted struct {
		Data struct {
			ID         string  `json:"id"`
			Status     string  `json:"status"`
			ProviderID *string `json:"provider_id"`
		} `json:"data"`
	}
	run("accept request", postJSON(provider, baseURL+"/service-requests/"+created.Data.ID+"/accept", map[string]any{}, &accepted))
	if accepted.Data.Status != "accepted" || accepted.Data.ProviderID == nil {
		logger.Fatal("unexpected state after accept",
			zap.String("status", accepted.Data.Status),
			zap.Any("provider_id", accepted.Data.ProviderID))
	}

	// A second acceptance attempt must be rejected as a conflict.
	if err := postJSON(provider, baseURL+"/service-requests/"+created.Data.ID+"/accept", map[string]any{}, nil); err == nil {
		logger.Fatal("second acceptance unexpectedly succeeded")
	} else {
		logger.Info("step ok", zap.String("step", "double accept rejected"), zap.String("detail", err.Error()))
	}

	logger.Info("smoke test passed",
		zap.String("request_id", accepted.Data.ID),
		zap.Stringp("provider_id", accepted.Data.ProviderID))
}

func newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func postJSON(client *http.Client, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("%s: %d %s %s", url, resp.StatusCode, errBody.Error.Code, errBody.Error.Message)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
