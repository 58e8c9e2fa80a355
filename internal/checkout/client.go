package checkout

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

	"github.com/MikeMC777/evercart/internal/httpx"
	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

// ErrUnavailable means the order-service could not be reached or its reply was unreadable.
var ErrUnavailable = errors.New("order service unavailable")

// Client calls a remote order-service over HTTP.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error) {
	var out order.CreateOrderResponse
	if err := c.post(ctx, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	var out payment.Intent
	if err := c.post(ctx, "/payment/create-order", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req payment.VerifyRequest) (*payment.VerifyResponse, error) {
	var out payment.VerifyResponse
	if err := c.post(ctx, "/payment/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReportFailure(ctx context.Context, req payment.FailRequest) error {
	return c.post(ctx, "/payment/fail", req, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w: %w", path, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return responseError(path, res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("POST %s: decode: %w: %w", path, ErrUnavailable, err)
	}
	return nil
}

// responseError maps an error response back onto the order error taxonomy.
func responseError(path string, res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	var e httpx.HTTPError
	if json.Unmarshal(raw, &e) != nil || e.Error == "" {
		e.Error = res.Status
	}

	switch res.StatusCode {
	case http.StatusBadRequest:
		if e.Error == order.ErrSignatureMismatch.Error() {
			return fmt.Errorf("POST %s: %w", path, order.ErrSignatureMismatch)
		}
		return &order.ValidationError{Msg: e.Error}
	case http.StatusNotFound:
		return fmt.Errorf("POST %s: %w", path, order.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("POST %s: %w", path, order.ErrForbidden)
	case http.StatusConflict:
		return fmt.Errorf("POST %s: %w: %s", path, order.ErrConflict, e.Error)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("POST %s: %w: %s", path, order.ErrGateway, e.Error)
	default:
		return fmt.Errorf("POST %s: %w: %s", path, order.ErrPersistence, e.Error)
	}
}
