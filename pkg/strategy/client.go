// Package strategy is the HTTP client for the downstream strategy-generator
// service, which turns a normalized business profile into a marketing
// strategy document.
package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "http://localhost:8001"

	// Strategy generation runs its own LLM calls downstream, so the default
	// request timeout is generous.
	defaultTimeout = 120 * time.Second

	healthTimeout = 5 * time.Second
)

// Client talks to the strategy-generator service.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	FromSubmission(ctx context.Context, submissionID string) (*GenerateResponse, error)
	Health(ctx context.Context) HealthStatus
}

// GenerateRequest is the body for POST /strategy/generate.
type GenerateRequest struct {
	SMEProfile map[string]any `json:"sme_profile"`
	TrendData  map[string]any `json:"trend_data,omitempty"`
}

// GenerateResponse is the strategy document returned by the service.
type GenerateResponse struct {
	StrategyID  string         `json:"strategy_id"`
	Strategy    map[string]any `json:"strategy"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// HealthStatus reports reachability of the strategy service. Health probes
// never return an error: an unreachable service is a valid answer.
type HealthStatus struct {
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a strategy-generator client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return c.post(ctx, "/strategy/generate", req)
}

func (c *httpClient) FromSubmission(ctx context.Context, submissionID string) (*GenerateResponse, error) {
	return c.post(ctx, "/strategy/from-submission", map[string]string{"submission_id": submissionID})
}

func (c *httpClient) post(ctx context.Context, path string, payload any) (*GenerateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "strategy: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "strategy: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, eris.Wrapf(err, "strategy: generation timed out after %s", c.http.Timeout)
		}
		return nil, eris.Wrapf(err, "strategy: cannot reach strategy generator at %s; check strategy.base_url and that the service is up", c.baseURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "strategy: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("strategy: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result GenerateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "strategy: unmarshal response")
	}

	return &result, nil
}

// Health probes GET /health with a short deadline independent of the
// configured generation timeout.
func (c *httpClient) Health(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{Reachable: false, Detail: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return HealthStatus{Reachable: false, Detail: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return HealthStatus{Reachable: false, Detail: resp.Status}
	}
	return HealthStatus{Reachable: true}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
