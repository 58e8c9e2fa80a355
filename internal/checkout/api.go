package checkout

import (
	"context"

	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

// API is the order and payment surface the orchestrator drives. Errors are
// classified with the order package's taxonomy.
type API interface {
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error)
	CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error)
	VerifyPayment(ctx context.Context, req payment.VerifyRequest) (*payment.VerifyResponse, error)
	ReportFailure(ctx context.Context, req payment.FailRequest) error
}

// Local calls the services in-process.
type Local struct {
	Orders   *order.Service
	Payments *payment.Service
}

func (l Local) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error) {
	return l.Orders.Create(ctx, req.Input())
}

func (l Local) CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	return l.Payments.CreateIntent(ctx, req)
}

func (l Local) VerifyPayment(ctx context.Context, req payment.VerifyRequest) (*payment.VerifyResponse, error) {
	return l.Payments.Verify(ctx, req)
}

func (l Local) ReportFailure(ctx context.Context, req payment.FailRequest) error {
	return l.Payments.ReportFailure(ctx, req)
}
