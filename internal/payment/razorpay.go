package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Razorpay talks to the Razorpay Orders API.
type Razorpay struct {
	HTTP      *http.Client
	BaseURL   string
	keyID     string
	keySecret string
}

func NewRazorpay(baseURL, keyID, keySecret string, timeout time.Duration) *Razorpay {
	return &Razorpay{
		HTTP:      &http.Client{Timeout: timeout},
		BaseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

func (r *Razorpay) KeyID() string { return r.keyID }

func (r *Razorpay) Demo() bool { return false }

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (r *Razorpay) CreateOrder(ctx context.Context, in RemoteOrderRequest) (*RemoteOrder, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	res, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /orders: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		var e razorpayError
		if json.Unmarshal(raw, &e) == nil && e.Error.Description != "" {
			return nil, fmt.Errorf("POST /orders: %s: %s (%s)", res.Status, e.Error.Description, e.Error.Code)
		}
		return nil, fmt.Errorf("POST /orders: %s", res.Status)
	}

	var out RemoteOrder
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("POST /orders: empty order id")
	}
	return &out, nil
}
