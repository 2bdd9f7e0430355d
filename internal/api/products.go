package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"pulseadmin/internal/catalog"
	"pulseadmin/internal/logging"
)

var _ catalog.Service = (*Client)(nil)

// ListProducts returns every product in server order.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	resp, _, err := c.do(ctx, request{
		op:     OpList,
		method: http.MethodGet,
		url:    c.endpoint("products"),
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeList(resp.Body)
}

// GetProduct fetches one product. A missing id yields an error matching ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	resp, _, err := c.do(ctx, request{
		op:     OpGet,
		method: http.MethodGet,
		url:    c.endpoint("products", id),
		auth:   true,
	})
	if err != nil {
		return catalog.Product{}, err
	}
	defer resp.Body.Close()
	return decodeEnvelopedProduct(resp.Body)
}

// CreateProduct sends a new product and returns it with its identity.
func (c *Client) CreateProduct(ctx context.Context, draft catalog.Product) (catalog.Product, error) {
	return c.write(ctx, OpCreate, http.MethodPost, "", draft, logging.AuditProductCreate)
}

// UpdateProduct replaces product id with draft.
func (c *Client) UpdateProduct(ctx context.Context, id string, draft catalog.Product) (catalog.Product, error) {
	return c.write(ctx, OpUpdate, http.MethodPut, id, draft, logging.AuditProductUpdate)
}

func (c *Client) write(ctx context.Context, op, method, id string, draft catalog.Product, ev logging.AuditEventType) (catalog.Product, error) {
	start := time.Now()

	body, contentType, err := encodeProduct(draft, id != "")
	if err != nil {
		return catalog.Product{}, err
	}

	url := c.endpoint("products")
	if id != "" {
		url = c.endpoint("products", id)
	}

	resp, reqID, err := c.do(ctx, request{
		op:          op,
		method:      method,
		url:         url,
		body:        body,
		contentType: contentType,
		auth:        true,
	})
	if err != nil {
		logging.Audit(logging.AuditEvent{Type: ev, RequestID: reqID, Target: id, Duration: time.Since(start), Err: err})
		return catalog.Product{}, err
	}
	defer resp.Body.Close()

	p, err := decodeProduct(op, resp.Body)
	if err != nil {
		return catalog.Product{}, err
	}
	if id != "" && p.ID == "" {
		p.ID = id
	}
	logging.Audit(logging.AuditEvent{Type: ev, RequestID: reqID, Target: p.ID, Success: true, Duration: time.Since(start)})
	return p, nil
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	start := time.Now()
	resp, reqID, err := c.do(ctx, request{
		op:     OpDelete,
		method: http.MethodDelete,
		url:    c.endpoint("products", id),
		auth:   true,
	})
	if err != nil {
		logging.Audit(logging.AuditEvent{Type: logging.AuditProductDelete, RequestID: reqID, Target: id, Duration: time.Since(start), Err: err})
		return err
	}
	// Body is empty or a confirmation message; neither is needed.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	logging.Audit(logging.AuditEvent{Type: logging.AuditProductDelete, RequestID: reqID, Target: id, Success: true, Duration: time.Since(start)})
	return nil
}
