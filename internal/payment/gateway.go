package payment

import (
	"context"

	"github.com/google/uuid"
)

// Gateway creates remote payment orders at the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req RemoteOrderRequest) (*RemoteOrder, error)
	// KeyID is the publishable key handed to the checkout UI.
	KeyID() string
	// Demo reports that the gateway never contacts a provider and callbacks are unsigned.
	Demo() bool
}

type RemoteOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

const (
	DemoKeyID         = "rzp_test_demo"
	demoOrderIDPrefix = "demo_order_"
)

// DemoGateway stands in for the provider when no credentials are configured.
type DemoGateway struct{}

func (DemoGateway) CreateOrder(_ context.Context, req RemoteOrderRequest) (*RemoteOrder, error) {
	return &RemoteOrder{
		ID:       demoOrderIDPrefix + uuid.NewString(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (DemoGateway) KeyID() string { return DemoKeyID }

func (DemoGateway) Demo() bool { return true }
