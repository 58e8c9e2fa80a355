package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MikeMC777/evercart/internal/payment"
)

// ErrDismissed means the shopper closed the gateway checkout without paying.
var ErrDismissed = errors.New("payment cancelled by user")

// DeclinedError is a charge the gateway refused.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string { return "payment declined: " + e.Reason }

// Callback carries the signed fields the gateway returns on a completed charge.
type Callback struct {
	RemoteOrderID   string
	RemotePaymentID string
	Signature       string
}

// GatewayUI hands control to the provider's checkout for intent and reports how it ended.
type GatewayUI interface {
	Pay(ctx context.Context, intent *payment.Intent) (*Callback, error)
}

// DemoSignature is sent when no secret is known; only a server without a secret accepts it.
const DemoSignature = "demo"

// SimulatedUI plays the provider's part: it completes, declines, or is dismissed.
// With a Secret it signs callbacks the way the gateway does.
type SimulatedUI struct {
	Secret  string
	Dismiss bool
	Decline string
}

func (s SimulatedUI) Pay(ctx context.Context, intent *payment.Intent) (*Callback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case s.Dismiss:
		return nil, ErrDismissed
	case s.Decline != "":
		return nil, &DeclinedError{Reason: s.Decline}
	}

	cb := &Callback{
		RemoteOrderID:   intent.RemoteOrderID,
		RemotePaymentID: "pay_" + uuid.NewString(),
		Signature:       DemoSignature,
	}
	if intent.Demo {
		cb.RemotePaymentID = "demo_pay_" + uuid.NewString()
	}
	if s.Secret != "" {
		cb.Signature = payment.Sign(s.Secret, cb.RemoteOrderID, cb.RemotePaymentID)
	}
	return cb, nil
}
