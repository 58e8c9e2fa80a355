package payment

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"github.com/MikeMC777/evercart/internal/order"
)

// Service creates payment intents and applies verified gateway callbacks to orders.
type Service struct {
	orders   order.Repository
	gateway  Gateway
	secret   string
	currency currency.Unit
	now      func() time.Time
}

// NewService builds the payment service. An empty secret is only valid with a demo gateway.
func NewService(orders order.Repository, gateway Gateway, secret string, cur currency.Unit) *Service {
	return &Service{
		orders:   orders,
		gateway:  gateway,
		secret:   secret,
		currency: cur,
		now:      time.Now,
	}
}

// Demo reports whether callbacks are accepted without a signature check.
// Only a missing secret turns the check off.
func (s *Service) Demo() bool {
	return s.secret == ""
}

func (s *Service) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	var missing []string
	if strings.TrimSpace(req.OrderID) == "" {
		missing = append(missing, "orderId")
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		missing = append(missing, "ownerId")
	}
	if req.Amount.IsZero() {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, order.Missing(missing...)
	}

	o, err := s.ownedOrder(ctx, req.OrderID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	switch {
	case o.Payment.Method != order.MethodOnline:
		return nil, order.Invalid("paymentMethod", "order is paid on delivery")
	case o.Payment.Status == order.PaymentCompleted:
		return nil, order.Invalid("orderId", "order is already paid")
	case o.Status != order.StatusPending:
		return nil, order.Invalid("orderId", fmt.Sprintf("order is %s", o.Status))
	case !req.Amount.Equal(o.Total):
		return nil, order.Invalid("amount", fmt.Sprintf("must equal order total %s", o.Total.StringFixed(2)))
	}

	minor, err := ToMinorUnits(o.Total, s.currency)
	if err != nil {
		return nil, order.Invalid("amount", err.Error())
	}

	remote, err := s.gateway.CreateOrder(ctx, RemoteOrderRequest{
		Amount:   minor,
		Currency: s.currency.String(),
		Receipt:  o.Number,
		Notes: map[string]string{
			"orderId": o.ID,
			"ownerId": o.OwnerID,
			"amount":  o.Total.StringFixed(2),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("payment.CreateIntent: %w: %w", order.ErrGateway, err)
	}
	if remote.Amount != minor {
		return nil, fmt.Errorf("payment.CreateIntent: %w: remote amount %d, want %d", order.ErrGateway, remote.Amount, minor)
	}

	applied, err := s.orders.SetPaymentIntent(ctx, o.ID, order.Intent{
		RemoteOrderID: remote.ID,
		Amount:        o.Total,
		Currency:      s.currency.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("payment.CreateIntent: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("payment.CreateIntent: %w", order.ErrConflict)
	}

	log.Printf("[payment] intent order=%s remote=%s amount=%d %s demo=%t",
		o.Number, remote.ID, remote.Amount, s.currency, s.gateway.Demo())

	return &Intent{
		OrderID:        o.ID,
		OrderNumber:    o.Number,
		RemoteOrderID:  remote.ID,
		PublishableKey: s.gateway.KeyID(),
		Amount:         remote.Amount,
		Currency:       s.currency.String(),
		Description:    "Order #" + o.Number,
		Demo:           s.gateway.Demo(),
	}, nil
}

// Verify checks a completion callback and moves the order to paid/processing.
// Replaying an already applied callback succeeds without writing again.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"remoteOrderId", req.RemoteOrderID},
		{"remotePaymentId", req.RemotePaymentID},
		{"signature", req.Signature},
		{"orderId", req.OrderID},
		{"ownerId", req.OwnerID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		if strings.TrimSpace(req.Signature) == "" {
			// an unsigned callback is both incomplete and unauthenticated
			return nil, fmt.Errorf("%w: %w", order.ErrSignatureMismatch, order.Missing(missing...))
		}
		return nil, order.Missing(missing...)
	}

	o, err := s.ownedOrder(ctx, req.OrderID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if !s.Demo() && !ValidSignature(s.secret, req.RemoteOrderID, req.RemotePaymentID, req.Signature) {
		log.Printf("[payment] signature mismatch order=%s remote=%s", o.Number, req.RemoteOrderID)
		return nil, fmt.Errorf("payment.Verify: %w", order.ErrSignatureMismatch)
	}

	if o.Payment.Status == order.PaymentCompleted {
		return replayed(o, req)
	}
	if err := checkPending(o, req.RemoteOrderID); err != nil {
		return nil, err
	}

	applied, err := s.orders.CompletePayment(ctx, o.ID, order.Completion{
		RemoteOrderID:   req.RemoteOrderID,
		RemotePaymentID: req.RemotePaymentID,
		Amount:          o.Total,
		Currency:        s.currency.String(),
		At:              s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("payment.Verify: %w", err)
	}
	if !applied {
		// lost a race with another callback; report based on what won
		o, err = s.orders.GetByID(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("payment.Verify: %w", err)
		}
		if o.Payment.Status == order.PaymentCompleted {
			return replayed(o, req)
		}
		return nil, fmt.Errorf("payment.Verify: %w", order.ErrConflict)
	}

	log.Printf("[payment] verified order=%s remote=%s payment=%s", o.Number, req.RemoteOrderID, req.RemotePaymentID)

	return &VerifyResponse{
		Success:   true,
		Message:   "Payment verified successfully",
		OrderID:   o.ID,
		PaymentID: req.RemotePaymentID,
	}, nil
}

// ReportFailure records a declined payment so the order can be paid again.
func (s *Service) ReportFailure(ctx context.Context, req FailRequest) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"orderId", req.OrderID},
		{"ownerId", req.OwnerID},
		{"remoteOrderId", req.RemoteOrderID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return order.Missing(missing...)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "payment failed"
	}

	o, err := s.ownedOrder(ctx, req.OrderID, req.OwnerID)
	if err != nil {
		return err
	}

	applied, err := s.orders.FailPayment(ctx, o.ID, req.RemoteOrderID, reason, s.now().UTC())
	if err != nil {
		return fmt.Errorf("payment.ReportFailure: %w", err)
	}
	if applied {
		log.Printf("[payment] failed order=%s remote=%s reason=%q", o.Number, req.RemoteOrderID, reason)
		return nil
	}

	o, err = s.orders.GetByID(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("payment.ReportFailure: %w", err)
	}
	switch {
	case o.Payment.RemoteOrderID != req.RemoteOrderID:
		return order.Invalid("remoteOrderId", "does not belong to this order")
	case o.Payment.Status == order.PaymentCompleted:
		return order.Invalid("orderId", "order is already paid")
	}
	return nil
}

func (s *Service) ownedOrder(ctx context.Context, ref, ownerID string) (*order.Order, error) {
	o, err := order.Find(ctx, s.orders, ref)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != ownerID {
		return nil, fmt.Errorf("order %s: %w", o.Number, order.ErrForbidden)
	}
	return o, nil
}

func checkPending(o *order.Order, remoteOrderID string) error {
	switch {
	case o.Payment.Method != order.MethodOnline:
		return order.Invalid("paymentMethod", "order is paid on delivery")
	case o.Payment.RemoteOrderID == "":
		return order.Invalid("orderId", "no payment was started for this order")
	case o.Payment.RemoteOrderID != remoteOrderID:
		return order.Invalid("remoteOrderId", "does not belong to this order")
	case o.Payment.Status != order.PaymentPending:
		return order.Invalid("orderId", fmt.Sprintf("payment is %s, start a new payment", o.Payment.Status))
	}
	return nil
}

func replayed(o *order.Order, req VerifyRequest) (*VerifyResponse, error) {
	if o.Payment.RemoteOrderID != req.RemoteOrderID || o.Payment.RemotePaymentID != req.RemotePaymentID {
		return nil, order.Invalid("orderId", "order is already paid")
	}
	return &VerifyResponse{
		Success:   true,
		Message:   "Payment already verified",
		OrderID:   o.ID,
		PaymentID: o.Payment.RemotePaymentID,
	}, nil
}
