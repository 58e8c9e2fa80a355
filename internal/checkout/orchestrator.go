package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

type Step int

const (
	StepAddressSelection Step = iota
	StepPaymentMethodSelection
	StepReviewAndConfirm
	StepProcessing
	StepVerifying
	StepSuccess
	StepError
)

func (s Step) String() string {
	switch s {
	case StepAddressSelection:
		return "address-selection"
	case StepPaymentMethodSelection:
		return "payment-method-selection"
	case StepReviewAndConfirm:
		return "review-and-confirm"
	case StepProcessing:
		return "processing"
	case StepVerifying:
		return "verifying"
	case StepSuccess:
		return "success"
	case StepError:
		return "error"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// State is what the checkout screen renders.
type State struct {
	Step        Step
	OrderID     string
	OrderNumber string
	PaymentID   string
	Message     string
	// CanRetry is set in StepError; Retry re-enters processing with the same order.
	CanRetry bool
}

var errBusy = errors.New("checkout is already processing")

// Orchestrator sequences one checkout session: choose an address and a payment
// method, confirm, create the order, take payment and verify it.
// State lives only as long as the Orchestrator.
type Orchestrator struct {
	api     API
	ui      GatewayUI
	cart    *Cart
	ownerID string

	mu        sync.Mutex
	state     State
	address   *order.ShippingAddress
	method    order.PaymentMethod
	placed    *order.Order
	listeners []func(State)

	unsubscribe func()
}

func NewOrchestrator(api API, ui GatewayUI, cart *Cart, ownerID string) *Orchestrator {
	o := &Orchestrator{
		api:     api,
		ui:      ui,
		cart:    cart,
		ownerID: ownerID,
		state:   State{Step: StepAddressSelection},
	}
	o.unsubscribe = cart.Subscribe(o.cartChanged)
	return o
}

// Close detaches the orchestrator from its cart.
func (o *Orchestrator) Close() { o.unsubscribe() }

// OnChange registers fn to be called with every new state.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	o.listeners = append(o.listeners, fn)
	o.mu.Unlock()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SelectAddress records the shipping address and moves on to payment method selection.
func (o *Orchestrator) SelectAddress(addr order.ShippingAddress) error {
	o.mu.Lock()
	if o.inFlight() || o.state.Step == StepSuccess {
		o.mu.Unlock()
		return fmt.Errorf("select address in %s: %w", o.state.Step, errBusy)
	}
	if o.address == nil || *o.address != addr {
		o.placed = nil
	}
	o.address = &addr
	st := State{Step: StepPaymentMethodSelection}
	o.mu.Unlock()

	o.set(st)
	return nil
}

// SelectPaymentMethod records the payment method; an address must already be chosen.
func (o *Orchestrator) SelectPaymentMethod(method string) error {
	m, err := order.ToPaymentMethod(method)
	if err != nil {
		return err
	}

	o.mu.Lock()
	switch {
	case o.inFlight() || o.state.Step == StepSuccess:
		o.mu.Unlock()
		return fmt.Errorf("select payment method in %s: %w", o.state.Step, errBusy)
	case o.address == nil:
		o.mu.Unlock()
		return order.Invalid("shippingAddress", "choose a shipping address first")
	}
	if m != o.method {
		o.placed = nil
	}
	o.method = m
	st := State{Step: StepReviewAndConfirm}
	o.mu.Unlock()

	o.set(st)
	return nil
}

// Confirm places the order and, for online payment, takes and verifies payment.
// The returned State is the final one; failures land in StepError rather than an error.
func (o *Orchestrator) Confirm(ctx context.Context) (State, error) {
	if len(o.cart.Items()) == 0 {
		return o.State(), order.Invalid("items", "cart is empty")
	}
	if err := o.begin(StepReviewAndConfirm); err != nil {
		return o.State(), err
	}
	return o.process(ctx), nil
}

// Retry re-enters processing after an error. An order that was already placed is
// reused so a retried payment never duplicates it.
func (o *Orchestrator) Retry(ctx context.Context) (State, error) {
	if err := o.begin(StepError); err != nil {
		return o.State(), err
	}
	return o.process(ctx), nil
}

// begin moves from the expected step to StepProcessing.
func (o *Orchestrator) begin(from Step) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.inFlight():
		return errBusy
	case o.state.Step != from:
		return order.Invalid("step", fmt.Sprintf("cannot proceed from %s", o.state.Step))
	case o.address == nil || o.method == "":
		return order.Invalid("step", "choose a shipping address and payment method first")
	}
	o.state = State{Step: StepProcessing}
	return nil
}

func (o *Orchestrator) process(ctx context.Context) State {
	o.mu.Lock()
	addr, method, placed := *o.address, o.method, o.placed
	o.mu.Unlock()

	o.set(State{Step: StepProcessing})

	if placed == nil {
		items := o.cart.Items()
		subtotal := o.cart.Subtotal()
		created, err := o.api.CreateOrder(ctx, order.CreateOrderRequest{
			OwnerID:         o.ownerID,
			Items:           items,
			ShippingAddress: addr,
			Subtotal:        decimal.NewNullDecimal(subtotal),
			Total:           decimal.NewNullDecimal(subtotal),
			PaymentMethod:   string(method),
		})
		if err != nil {
			return o.fail(nil, err)
		}
		placed = created
		o.mu.Lock()
		o.placed = created
		o.mu.Unlock()
	}

	if placed.Payment.Method == order.MethodCOD {
		return o.succeed(placed, "")
	}

	intent, err := o.api.CreatePaymentIntent(ctx, payment.CreateIntentRequest{
		OrderID: placed.ID,
		Amount:  placed.Total,
		OwnerID: o.ownerID,
	})
	if err != nil {
		return o.fail(placed, err)
	}

	cb, err := o.ui.Pay(ctx, intent)
	if err != nil {
		var declined *DeclinedError
		if errors.As(err, &declined) {
			ferr := o.api.ReportFailure(ctx, payment.FailRequest{
				OrderID:       placed.ID,
				OwnerID:       o.ownerID,
				RemoteOrderID: intent.RemoteOrderID,
				Reason:        declined.Reason,
			})
			if ferr != nil {
				log.Printf("[checkout] report failure order=%s: %v", placed.Number, ferr)
			}
		}
		return o.fail(placed, err)
	}

	o.set(State{Step: StepVerifying, OrderID: placed.ID, OrderNumber: placed.Number})

	res, err := o.api.VerifyPayment(ctx, payment.VerifyRequest{
		RemoteOrderID:   cb.RemoteOrderID,
		RemotePaymentID: cb.RemotePaymentID,
		Signature:       cb.Signature,
		OrderID:         placed.ID,
		OwnerID:         o.ownerID,
	})
	if err != nil {
		return o.fail(placed, err)
	}
	return o.succeed(placed, res.PaymentID)
}

func (o *Orchestrator) succeed(placed *order.Order, paymentID string) State {
	st := State{
		Step:        StepSuccess,
		OrderID:     placed.ID,
		OrderNumber: placed.Number,
		PaymentID:   paymentID,
		Message:     "Order placed successfully",
	}
	o.set(st)
	o.cart.Clear()
	return st
}

func (o *Orchestrator) fail(placed *order.Order, err error) State {
	log.Printf("[checkout] owner=%s failed: %v", o.ownerID, err)
	st := State{Step: StepError, Message: userMessage(err), CanRetry: true}
	if placed != nil {
		st.OrderID, st.OrderNumber = placed.ID, placed.Number
	}
	o.set(st)
	return st
}

// cartChanged forgets a placed but unpaid order once the cart no longer matches it.
func (o *Orchestrator) cartChanged([]order.LineItem) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Step == StepSuccess || o.inFlight() {
		return
	}
	o.placed = nil
}

func (o *Orchestrator) inFlight() bool {
	return o.state.Step == StepProcessing || o.state.Step == StepVerifying
}

func (o *Orchestrator) set(st State) {
	o.mu.Lock()
	o.state = st
	listeners := append(([]func(State))(nil), o.listeners...)
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

// userMessage is the text shown to the shopper. Gateway and store failures stay generic.
func userMessage(err error) string {
	var verr *order.ValidationError
	switch {
	case errors.Is(err, ErrDismissed):
		return "Payment cancelled by user"
	case errors.As(err, new(*DeclinedError)):
		return err.Error()
	case errors.Is(err, order.ErrSignatureMismatch):
		return "Payment verification failed"
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, order.ErrForbidden):
		return "You cannot pay for this order"
	case errors.Is(err, order.ErrNotFound):
		return "Order not found"
	case errors.Is(err, order.ErrGateway):
		return "Payment provider is unavailable, please try again"
	case errors.Is(err, ErrUnavailable):
		return "Could not reach the store, please try again"
	}
	return "Something went wrong, please try again"
}
