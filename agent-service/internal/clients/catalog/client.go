package catalog

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

const defaultTimeout = 5 * time.Second

// Client talks to the catalog service's /api/products endpoints.
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

type insertResponse struct {
	Success bool                `json:"success"`
	Product models.CatalogEntry `json:"product"`
	Error   string              `json:"error"`
}

type listResponse struct {
	Products []models.CatalogEntry `json:"products"`
}

func (c *Client) Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	body, err := json.Marshal(entry)
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("marshal catalog entry: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/products", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return models.CatalogEntry{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return models.CatalogEntry{}, err
	}
	defer resp.Body.Close()

	var parsed insertResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed)
	if resp.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != "" {
			return models.CatalogEntry{}, fmt.Errorf("catalog returned %s: %s", resp.Status, parsed.Error)
		}
		return models.CatalogEntry{}, fmt.Errorf("catalog returned %s", resp.Status)
	}
	if decodeErr != nil {
		return models.CatalogEntry{}, fmt.Errorf("decode catalog response: %w", decodeErr)
	}
	if !parsed.Success {
		return models.CatalogEntry{}, fmt.Errorf("catalog rejected product: %s", parsed.Error)
	}
	return parsed.Product, nil
}

func (c *Client) List(ctx context.Context) ([]models.CatalogEntry, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/products", c.baseURL), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}
	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode catalog list: %w", err)
	}
	return parsed.Products, nil
}
