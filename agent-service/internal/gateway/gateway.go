package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/metrics"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply is the undecoded body of a successful completion response.
type Reply []byte

var ErrInvalidMessages = errors.New("gateway: messages must be non-empty system or user turns")

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048

	versionedPath  = "/engines/v1"
	completionPath = "chat/completions"

	maxReplyBytes = 1 << 20
	maxErrorBytes = 4 << 10
)

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	// Temperature is sent as-is when set, including 0. Nil selects 0.7.
	Temperature *float64
	MaxTokens   int
	HTTPClient  *http.Client
	Metrics     *metrics.Metrics
}

type Client struct {
	baseURL     string
	model       string
	timeout     time.Duration
	temperature float64
	maxTokens   int
	client      *http.Client
	metrics     *metrics.Metrics
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("model runner base url required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model identifier required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil {
		if *cfg.Temperature < 0 {
			return nil, fmt.Errorf("temperature must not be negative, got %g", *cfg.Temperature)
		}
		temperature = *cfg.Temperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		timeout:     timeout,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      client,
		metrics:     cfg.Metrics,
	}, nil
}

func (c *Client) Model() string   { return c.model }
func (c *Client) BaseURL() string { return c.baseURL }

// CompletionURL appends only the completion sub-path when the base already
// carries the versioned API segment.
func (c *Client) CompletionURL() string {
	if strings.Contains(c.baseURL, versionedPath) {
		return c.baseURL + "/" + completionPath
	}
	return c.baseURL + versionedPath + "/" + completionPath
}

func (c *Client) HealthURL() string {
	if strings.Contains(c.baseURL, versionedPath) {
		return strings.Replace(c.baseURL, versionedPath, "/health", 1)
	}
	return c.baseURL + "/health"
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// Invoke sends one chat completion request. It never retries.
func (c *Client) Invoke(ctx context.Context, messages []Message) (Reply, error) {
	if err := validateMessages(messages); err != nil {
		return nil, err
	}
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway marshal request: %w", err)
	}

	target := c.CompletionURL()
	start := time.Now()
	reply, gwErr := c.send(ctx, target, body)
	if gwErr != nil {
		c.metrics.ObserveGateway(time.Since(start), string(gwErr.Kind))
		return nil, gwErr
	}
	c.metrics.ObserveGateway(time.Since(start), "")
	return reply, nil
}

func (c *Client) send(ctx context.Context, target string, body []byte) (Reply, *GatewayError) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Kind: KindUnknown, URL: target, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, transportError(target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &GatewayError{Kind: KindEndpointNotFound, URL: target, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &GatewayError{Kind: KindRemoteError, URL: target, StatusCode: resp.StatusCode, Body: string(raw)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &GatewayError{
			Kind:       KindUnknown,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status %s", resp.Status),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, transportError(target, err)
	}
	return Reply(raw), nil
}

// Ping checks the model runner health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	target := c.HealthURL()
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return &GatewayError{Kind: KindUnknown, URL: target, Message: "build request", Err: err}
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return transportError(target, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBytes))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &GatewayError{Kind: KindEndpointNotFound, URL: target, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &GatewayError{Kind: KindRemoteError, URL: target, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 300:
		return &GatewayError{Kind: KindUnknown, URL: target, StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}

func validateMessages(messages []Message) error {
	if len(messages) == 0 {
		return ErrInvalidMessages
	}
	for i, m := range messages {
		if m.Role != RoleSystem && m.Role != RoleUser {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidMessages, i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("%w: message %d is empty", ErrInvalidMessages, i)
		}
	}
	return nil
}
