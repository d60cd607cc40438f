package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Catalog resolves catalog details and stock levels by product id.
type Catalog interface {
	Product(ctx context.Context, id int) (Product, error)
	Stock(ctx context.Context, id int) (Stock, error)
}

var (
	ErrCatalogNotFound    = errors.New("catalog product not found")
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

const catalogTimeout = 3 * time.Second

// HTTPCatalog fetches single entries from the catalog service.
type HTTPCatalog struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPCatalog(baseURL string) *HTTPCatalog {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &HTTPCatalog{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: catalogTimeout},
	}
}

func (c *HTTPCatalog) Product(ctx context.Context, id int) (Product, error) {
	var p Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", id), &p); err != nil {
		return Product{}, err
	}
	p.Amount = 0
	return p, nil
}

func (c *HTTPCatalog) Stock(ctx context.Context, id int) (Stock, error) {
	var st Stock
	if err := c.getJSON(ctx, fmt.Sprintf("/stock/%d", id), &st); err != nil {
		return Stock{}, err
	}
	return st, nil
}

func (c *HTTPCatalog) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.getJSON(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPCatalog) ListStock(ctx context.Context) ([]Stock, error) {
	var out []Stock
	if err := c.getJSON(ctx, "/stock", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPCatalog) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrCatalogNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrCatalogBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
