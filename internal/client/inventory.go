// Package client holds HTTP clients for the peer services.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fastcart/fastcart/internal/config"
	"github.com/fastcart/fastcart/internal/domain/product"
)

// InventoryClient fetches products from the inventory service. It
// implements service.ProductFetcher so the order pipeline can be tested
// against a fake.
type InventoryClient struct {
	baseURL string
	http    *http.Client
}

func NewInventoryClient(cfg config.InventoryConfig) *InventoryClient {
	return &InventoryClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

func (c *InventoryClient) Fetch(ctx context.Context, id string) (*product.Product, error) {
	endpoint := c.baseURL + "/inventory/product/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building inventory request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inventory service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			Data product.Product `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decoding inventory response: %w", err)
		}
		return &body.Data, nil

	case http.StatusNotFound:
		return nil, product.ErrProductNotFound

	default:
		return nil, fmt.Errorf("inventory service returned status %d for product %s", resp.StatusCode, id)
	}
}
