package textgen

import (
	"context"
	"errors"
	"net"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicOption configures the Anthropic-backed client.
type AnthropicOption func(*anthropicClient)

// WithAnthropicModel overrides the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *anthropicClient) {
		c.model = model
	}
}

// WithAnthropicMaxTokens overrides the completion token cap.
func WithAnthropicMaxTokens(n int64) AnthropicOption {
	return func(c *anthropicClient) {
		c.maxTokens = n
	}
}

type anthropicClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates a gateway backed by the Anthropic Messages API, for
// deployments that prefer a hosted model over a local backend. The no-retry
// contract is the same as the local client's.
func NewAnthropic(apiKey string, opts ...AnthropicOption) Client {
	c := &anthropicClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0)),
		model:     defaultAnthropicModel,
		maxTokens: 2048,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *anthropicClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const endpoint = "https://api.anthropic.com/v1/messages"

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", classifyAnthropicError(endpoint, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "response contained no text blocks"}
	}
	return b.String(), nil
}

func classifyAnthropicError(endpoint string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Endpoint: endpoint, Message: "generation deadline exceeded", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Endpoint: endpoint, Message: "generation deadline exceeded", Cause: err}
		}
		return &Error{
			Kind:     KindConnectionFailed,
			Endpoint: endpoint,
			Message:  "cannot reach the Anthropic API; check network access and llm.provider settings",
			Cause:    err,
		}
	}
	return &Error{Kind: KindGenerationFailed, Endpoint: endpoint, Message: "message creation failed", Cause: err}
}
