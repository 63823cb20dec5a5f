package orderhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/laundry-pickup/internal/cart/domain"
)

// StatusError is returned for any non-2xx answer the client does not
// translate into a domain value.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("order service %s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the order service REST API.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		token: cfg.Token,
		http:  hc,
	}
}

// FetchPendingOrder returns nil when the service reports no pending order.
func (c *Client) FetchPendingOrder(ctx context.Context) (*domain.PendingOrder, error) {
	var order *domain.PendingOrder
	status, err := c.do(ctx, "fetch pending order", http.MethodGet, "/orders/pending", nil, &order)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || status == http.StatusNoContent {
		return nil, nil
	}
	return order, nil
}

// UpdateCart sends the changed lines for userID. A JSON null body yields
// a nil snapshot.
func (c *Client) UpdateCart(ctx context.Context, userID string, items []domain.CartUpdate) (*domain.CartSnapshot, error) {
	body := struct {
		Items []domain.CartUpdate `json:"items"`
	}{Items: items}

	var snap *domain.CartSnapshot
	path := "/carts/" + url.PathEscape(userID)
	status, err := c.do(ctx, "update cart", http.MethodPut, path, body, &snap)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return snap, nil
}

// CurrentUserID returns "" when the token is missing or rejected.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var me struct {
		ID string `json:"id"`
	}
	_, err := c.do(ctx, "current user", http.MethodGet, "/users/me", nil, &me)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden) {
			return "", nil
		}
		return "", err
	}
	return me.ID, nil
}

// PickupAddress returns the registered pickup address, "" when none.
func (c *Client) PickupAddress(ctx context.Context) (string, error) {
	var res struct {
		Address string `json:"address"`
	}
	status, err := c.do(ctx, "pickup address", http.MethodGet, "/users/me/pickup-address", nil, &res)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound || status == http.StatusNoContent {
		return "", nil
	}
	return res.Address, nil
}

// do performs one request. 404 and 204 are returned as statuses without
// decoding; other non-2xx answers become *StatusError.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("order service %s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return 0, fmt.Errorf("order service %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("order service %s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return resp.StatusCode, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("order service %s: decode: %w", op, err)
		}
	}
	return resp.StatusCode, nil
}
