package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	iaerrors "github.com/auditkit/invaudit/pkg/errors"
)

// DefaultTimeout is the hard per-request timeout for ERP lookups.
const DefaultTimeout = 5 * time.Second

// Client talks to the ERP master-data HTTP service. A 404 from any lookup
// is returned as iaerrors.ErrNotFound so callers can turn it into a FAILED
// finding instead of a transport error.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Timeout is the per-request timeout (default: DefaultTimeout).
	Timeout time.Duration

	// HTTPClient overrides the underlying http.Client (used in tests).
	HTTPClient *http.Client
}

// NewClient creates a Client for the ERP service at baseURL.
func NewClient(baseURL string, opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// GetVendorByName looks up a vendor by name (case-insensitive on the server).
func (c *Client) GetVendorByName(ctx context.Context, name string) (*Vendor, error) {
	var vendor Vendor
	if err := c.get(ctx, "/vendor/by_name/"+url.PathEscape(name), &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetVendorByID looks up a vendor by its unique ID.
func (c *Client) GetVendorByID(ctx context.Context, id string) (*Vendor, error) {
	var vendor Vendor
	if err := c.get(ctx, "/vendor/by_id/"+url.PathEscape(id), &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetPurchaseOrder retrieves a purchase order by its PO number.
func (c *Client) GetPurchaseOrder(ctx context.Context, poNumber string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := c.get(ctx, "/po/"+url.PathEscape(poNumber), &po); err != nil {
		return nil, err
	}
	return &po, nil
}

// GetSKU retrieves an item master record by item code.
func (c *Client) GetSKU(ctx context.Context, itemCode string) (*SKU, error) {
	var sku SKU
	if err := c.get(ctx, "/sku/"+url.PathEscape(itemCode), &sku); err != nil {
		return nil, err
	}
	return &sku, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building ERP request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling ERP service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("ERP %s: %w", path, iaerrors.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("ERP %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding ERP response: %w", err)
	}
	return nil
}
