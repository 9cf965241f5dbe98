package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

const defaultTimeout = 60 * time.Second

// APIError is a non-2xx answer from the agent service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("agent service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("agent service returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type evaluateResponse struct {
	Success    bool               `json:"success"`
	Evaluation *models.Evaluation `json:"evaluation"`
	Error      string             `json:"error"`
}

func (c *Client) Evaluate(ctx context.Context, sub models.Submission) (models.Evaluation, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("marshal submission: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/evaluate", bytes.NewReader(body))
	if err != nil {
		return models.Evaluation{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.Evaluation{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.Evaluation{}, err
	}
	var parsed evaluateResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && parsed.Error != "" {
			msg = parsed.Error
		}
		return models.Evaluation{}, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return models.Evaluation{}, fmt.Errorf("decode evaluation response: %w", decodeErr)
	}
	if !parsed.Success || parsed.Evaluation == nil {
		return models.Evaluation{}, &APIError{StatusCode: resp.StatusCode, Message: parsed.Error}
	}
	return *parsed.Evaluation, nil
}
