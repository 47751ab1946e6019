package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1:8b"
	defaultTimeout = 45 * time.Second
)

// Option configures the local client.
type Option func(*localClient)

// WithBaseURL overrides the backend base URL.
func WithBaseURL(url string) Option {
	return func(c *localClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(c *localClient) {
		c.model = model
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *localClient) {
		c.timeout = d
		c.http.Timeout = d
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *localClient) {
		c.http = hc
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *localClient) {
		c.temperature = t
	}
}

type localClient struct {
	baseURL     string
	model       string
	timeout     time.Duration
	temperature float64
	http        *http.Client
}

// NewLocal creates a client for a self-hosted text-generation backend that
// speaks the Ollama generate API (POST /api/generate, stream disabled).
func NewLocal(opts ...Option) Client {
	c := &localClient{
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		timeout:     defaultTimeout,
		temperature: 0.3,
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

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (c *localClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	endpoint := c.baseURL + "/api/generate"

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		System:  systemPrompt,
		Prompt:  userPrompt,
		Stream:  false,
		Options: generateOptions{Temperature: c.temperature},
	})
	if err != nil {
		return "", &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.classifyTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Kind:     KindGenerationFailed,
			Endpoint: endpoint,
			Message:  fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200)),
		}
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "malformed response envelope", Cause: err}
	}
	if out.Error != "" {
		return "", &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "backend error: " + out.Error}
	}
	if out.Response == "" {
		return "", &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "backend returned an empty completion"}
	}

	return out.Response, nil
}

// classifyTransportError maps transport failures onto the gateway taxonomy.
// Timeouts (client deadline or caller context) become KindTimeout; everything
// else at the dial layer is a connection failure with remediation text.
func (c *localClient) classifyTransportError(endpoint string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Kind:     KindTimeout,
			Endpoint: endpoint,
			Message:  fmt.Sprintf("generation exceeded %s", c.timeout),
			Cause:    err,
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{
			Kind:     KindTimeout,
			Endpoint: endpoint,
			Message:  fmt.Sprintf("generation exceeded %s", c.timeout),
			Cause:    err,
		}
	}
	return &Error{
		Kind:     KindConnectionFailed,
		Endpoint: endpoint,
		Message:  fmt.Sprintf("cannot reach text-generation backend at %s; ensure the backend is running and llm.base_url points at it", c.baseURL),
		Cause:    err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
