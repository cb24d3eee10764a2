package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/andikarachman/go-shop-events/internal/apperr"
	"github.com/andikarachman/go-shop-events/internal/domain"
)

// Client fetches product snapshots from the product service over HTTP. The
// order service uses it to price and stock-check lines before accepting an
// order.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) FindByID(ctx context.Context, productID int) (domain.ProductSnapshot, error) {
	url := fmt.Sprintf("%s/products/internal/%d", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("fetch product %d: %w", productID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.ProductSnapshot{}, fmt.Errorf("product %d: %w", productID, apperr.ErrNotFound)
	default:
		return domain.ProductSnapshot{}, fmt.Errorf("product service returned %d for product %d", resp.StatusCode, productID)
	}

	var snap domain.ProductSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("decode product %d: %w", productID, err)
	}
	return snap, nil
}
