package inventory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"opnamecore/internal/config"
	"opnamecore/internal/domain/models"
)

// Gateway exposes the retail backend operations the opname core consumes.
type Gateway interface {
	GetItem(ctx context.Context, code string) (*Item, error)
	SetQuantity(ctx context.Context, code string, qty int) error
	CountAll(ctx context.Context) (int, error)
}

// Item mirrors the backend's item payload. Only the fields the opname core
// reads are mapped.
type Item struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	SystemQty    int     `json:"system_qty"`
	Price        float64 `json:"price"`
	Cost         float64 `json:"cost"`
	ReorderLevel int     `json:"reorder_level"`
}

// APIClient is a resty-backed implementation of Gateway.
type APIClient struct {
	httpClient *resty.Client
}

// apiError represents the backend's error payload.
type apiError struct {
	Error string `json:"error"`
}

// NewClient builds an inventory API client using the provided configuration.
func NewClient(cfg config.InventoryConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.APIToken != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIToken))
	}

	return &APIClient{httpClient: restyClient}
}

// GetItem fetches a single item by code. A backend 404 is reported as
// models.ErrItemNotFound.
func (c *APIClient) GetItem(ctx context.Context, code string) (*Item, error) {
	result := new(Item)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/items/%s", code))
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", code, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("item %s: %w", code, models.ErrItemNotFound)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("inventory api error: code=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	return result, nil
}

// SetQuantity overwrites the backend's recorded quantity for an item.
// Setting the same quantity twice is safe, which keeps finalize retries
// idempotent on the inventory side.
func (c *APIClient) SetQuantity(ctx context.Context, code string, qty int) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]any{"quantity": qty}).
		SetError(apiErr).
		Put(fmt.Sprintf("/items/%s/quantity", code))
	if err != nil {
		return fmt.Errorf("set quantity for %s: %w", code, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("item %s: %w", code, models.ErrItemNotFound)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("inventory api error: code=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	return nil
}

// CountAll returns the catalog size, used for the percentage-of-catalog
// metric on reconciliation reports.
func (c *APIClient) CountAll(ctx context.Context) (int, error) {
	result := new(struct {
		Count int `json:"count"`
	})
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get("/items/count")
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return 0, fmt.Errorf("inventory api error: code=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	return result.Count, nil
}
