package payment_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/MikeMC777/evercart/internal/order"
	"github.com/MikeMC777/evercart/internal/payment"
)

const secret = "test_secret"

// stubGateway returns remote order ids from ids in turn.
type stubGateway struct {
	mu       sync.Mutex
	ids      []string
	err      error
	skew     int64
	requests []payment.RemoteOrderRequest
}

func (g *stubGateway) CreateOrder(_ context.Context, req payment.RemoteOrderRequest) (*payment.RemoteOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	id := "order_" + uuid.NewString()
	if len(g.ids) > 0 {
		id, g.ids = g.ids[0], g.ids[1:]
	}
	return &payment.RemoteOrder{ID: id, Amount: req.Amount + g.skew, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }
func (g *stubGateway) Demo() bool    { return false }

type fixture struct {
	repo     *order.MemRepo
	orders   *order.Service
	payments *payment.Service
	gateway  *stubGateway
}

func newFixture(gw payment.Gateway, secret string) *fixture {
	repo := order.NewMemRepo()
	f := &fixture{
		repo:     repo,
		orders:   order.NewService(repo, "INR"),
		payments: payment.NewService(repo, gw, secret, currency.INR),
	}
	f.gateway, _ = gw.(*stubGateway)
	return f
}

func (f *fixture) placeOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	return f.placeOrderFor(t, uuid.NewString(), method)
}

func (f *fixture) placeOrderFor(t *testing.T, owner string, method order.PaymentMethod) *order.Order {
	t.Helper()
	o, err := f.orders.Create(t.Context(), order.CreateInput{
		OwnerID: owner,
		Items: []order.LineItem{
			{ProductID: uuid.NewString(), Name: "Headphones", UnitPrice: decimal.RequireFromString("500"), Quantity: 2},
			{ProductID: uuid.NewString(), Name: "Case", UnitPrice: decimal.RequireFromString("300"), Quantity: 1},
		},
		ShippingAddress: order.ShippingAddress{
			FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "9876543210",
			Address: "12 MG Road", City: "Bengaluru", State: "KA", ZipCode: "560001",
		},
		PaymentMethod: string(method),
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) intent(t *testing.T, o *order.Order) *payment.Intent {
	t.Helper()
	in, err := f.payments.CreateIntent(t.Context(), payment.CreateIntentRequest{OrderID: o.ID, Amount: o.Total, OwnerID: o.OwnerID})
	require.NoError(t, err)
	return in
}

func signed(o *order.Order, remoteOrderID, remotePaymentID string) payment.VerifyRequest {
	return payment.VerifyRequest{
		RemoteOrderID:   remoteOrderID,
		RemotePaymentID: remotePaymentID,
		Signature:       payment.Sign(secret, remoteOrderID, remotePaymentID),
		OrderID:         o.ID,
		OwnerID:         o.OwnerID,
	}
}

func (f *fixture) reload(t *testing.T, id string) *order.Order {
	t.Helper()
	o, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

func TestCreateIntent(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_abc"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)

	in := f.intent(t, o)
	assert.Equal(t, "order_abc", in.RemoteOrderID)
	assert.Equal(t, int64(130000), in.Amount)
	assert.Equal(t, "INR", in.Currency)
	assert.Equal(t, "rzp_test_key", in.PublishableKey)
	assert.False(t, in.Demo)
	assert.Equal(t, o.Number, in.OrderNumber)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, int64(130000), req.Amount)
	assert.Equal(t, o.Number, req.Receipt)
	assert.Equal(t, o.ID, req.Notes["orderId"])

	got := f.reload(t, o.ID)
	assert.Equal(t, "order_abc", got.Payment.RemoteOrderID)
	assert.Equal(t, order.PaymentPending, got.Payment.Status)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestCreateIntent_Errors(t *testing.T) {
	f := newFixture(&stubGateway{}, secret)
	online := f.placeOrder(t, order.MethodOnline)
	cod := f.placeOrder(t, order.MethodCOD)

	tests := []struct {
		name string
		req  payment.CreateIntentRequest
		want error
	}{
		{"missing fields", payment.CreateIntentRequest{}, order.ErrValidation},
		{"unknown order", payment.CreateIntentRequest{OrderID: uuid.NewString(), Amount: online.Total, OwnerID: online.OwnerID}, order.ErrNotFound},
		{"other owner", payment.CreateIntentRequest{OrderID: online.ID, Amount: online.Total, OwnerID: uuid.NewString()}, order.ErrForbidden},
		{"amount differs from total", payment.CreateIntentRequest{OrderID: online.ID, Amount: decimal.NewFromInt(13), OwnerID: online.OwnerID}, order.ErrValidation},
		{"cash on delivery", payment.CreateIntentRequest{OrderID: cod.ID, Amount: cod.Total, OwnerID: cod.OwnerID}, order.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.CreateIntent(t.Context(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.gateway.requests, "no remote order for rejected requests")
}

func TestCreateIntent_GatewayFailure(t *testing.T) {
	f := newFixture(&stubGateway{err: errors.New("POST /orders: 500 Internal Server Error")}, secret)
	o := f.placeOrder(t, order.MethodOnline)

	_, err := f.payments.CreateIntent(t.Context(), payment.CreateIntentRequest{OrderID: o.ID, Amount: o.Total, OwnerID: o.OwnerID})
	assert.ErrorIs(t, err, order.ErrGateway)
	assert.Empty(t, f.reload(t, o.ID).Payment.RemoteOrderID)
}

func TestCreateIntent_GatewayAmountMismatch(t *testing.T) {
	f := newFixture(&stubGateway{skew: 100}, secret)
	o := f.placeOrder(t, order.MethodOnline)

	_, err := f.payments.CreateIntent(t.Context(), payment.CreateIntentRequest{OrderID: o.ID, Amount: o.Total, OwnerID: o.OwnerID})
	assert.ErrorIs(t, err, order.ErrGateway)
}

func TestVerify_ScenarioOnline(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_abc"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)
	f.intent(t, o)

	res, err := f.payments.Verify(t.Context(), signed(o, "order_abc", "pay_xyz"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, o.ID, res.OrderID)
	assert.Equal(t, "pay_xyz", res.PaymentID)

	got := f.reload(t, o.ID)
	assert.Equal(t, order.PaymentCompleted, got.Payment.Status)
	assert.Equal(t, order.StatusProcessing, got.Status)
	assert.Equal(t, "order_abc", got.Payment.RemoteOrderID)
	assert.Equal(t, "pay_xyz", got.Payment.RemotePaymentID)
	assert.True(t, got.Payment.Amount.Valid && got.Payment.Amount.Decimal.Equal(decimal.NewFromInt(1300)))
	assert.Equal(t, "INR", got.Payment.Currency)
	assert.NotNil(t, got.Payment.CompletedAt)
}

func TestVerify_EmptySignature(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_abc"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)
	f.intent(t, o)

	req := signed(o, "order_abc", "pay_xyz")
	req.Signature = ""
	_, err := f.payments.Verify(t.Context(), req)
	assert.ErrorIs(t, err, order.ErrSignatureMismatch)
	assert.ErrorIs(t, err, order.ErrValidation)

	got := f.reload(t, o.ID)
	assert.Equal(t, order.PaymentPending, got.Payment.Status)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestVerify_TamperedSignature(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_abc"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)
	f.intent(t, o)

	req := signed(o, "order_abc", "pay_xyz")
	req.RemotePaymentID = "pay_xyZ"
	_, err := f.payments.Verify(t.Context(), req)
	assert.ErrorIs(t, err, order.ErrSignatureMismatch)
	assert.Equal(t, order.PaymentPending, f.reload(t, o.ID).Payment.Status)
}

func TestVerify_MissingFields(t *testing.T) {
	f := newFixture(&stubGateway{}, secret)
	o := f.placeOrder(t, order.MethodOnline)

	req := signed(o, "order_abc", "pay_xyz")
	req.RemoteOrderID, req.OrderID = "", ""
	_, err := f.payments.Verify(t.Context(), req)
	require.ErrorIs(t, err, order.ErrValidation)
	assert.NotErrorIs(t, err, order.ErrSignatureMismatch)
	assert.Contains(t, err.Error(), "remoteOrderId, orderId")
}

func TestVerify_OtherOwnerRegardlessOfSignature(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_abc"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)
	f.intent(t, o)

	for _, sig := range []string{payment.Sign(secret, "order_abc", "pay_xyz"), "forged"} {
		req := signed(o, "order_abc", "pay_xyz")
		req.OwnerID = uuid.NewString()
		req.Signature = sig
		_, err := f.payments.Verify(t.Context(), req)
		assert.ErrorIs(t, err, order.ErrForbidden)
	}
	assert.Equal(t, order.PaymentPending, f.reload(t, o.ID).Payment.Status)
}

func TestVerify_UnknownOrder(t *testing.T) {
	f := newFixture(&stubGateway{}, secret)
	o := &order.Order{ID: uuid.NewString(), OwnerID: uuid.NewString()}

	_, err := f.payments.Verify(t.Context(), signed(o, "order_abc", "pay_xyz"))
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestVerify_RemoteOrderOfAnotherOrder(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_a", "order_b"}}, secret)
	a := f.placeOrder(t, order.MethodOnline)
	b := f.placeOrderFor(t, a.OwnerID, order.MethodOnline)
	f.intent(t, a)
	f.intent(t, b)

	// a genuine callback for order_a cannot pay for b
	req := signed(a, "order_a", "pay_1")
	req.OrderID = b.ID
	_, err := f.payments.Verify(t.Context(), req)
	assert.ErrorIs(t, err, order.ErrValidation)

	assert.Equal(t, order.PaymentPending, f.reload(t, a.ID).Payment.Status)
	assert.Equal(t, order.PaymentPending, f.reload(t, b.ID).Payment.Status)
}

func TestVerify_Idempotent(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_abc"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)
	f.intent(t, o)
	req := signed(o, "order_abc", "pay_xyz")

	first, err := f.payments.Verify(t.Context(), req)
	require.NoError(t, err)
	completedAt := *f.reload(t, o.ID).Payment.CompletedAt

	second, err := f.payments.Verify(t.Context(), req)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, first.PaymentID, second.PaymentID)

	got := f.reload(t, o.ID)
	assert.Equal(t, order.PaymentCompleted, got.Payment.Status)
	assert.True(t, got.Payment.CompletedAt.Equal(completedAt), "completion is not re-applied")

	// a different payment against a paid order is refused
	_, err = f.payments.Verify(t.Context(), signed(o, "order_abc", "pay_other"))
	assert.ErrorIs(t, err, order.ErrValidation)
}

func TestVerify_ConcurrentCallbacks(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_abc"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)
	f.intent(t, o)
	req := signed(o, "order_abc", "pay_xyz")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.payments.Verify(context.Background(), req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, order.PaymentCompleted, f.reload(t, o.ID).Payment.Status)
}

func TestVerify_BeforeIntent(t *testing.T) {
	f := newFixture(&stubGateway{}, secret)
	o := f.placeOrder(t, order.MethodOnline)

	_, err := f.payments.Verify(t.Context(), signed(o, "order_abc", "pay_xyz"))
	assert.ErrorIs(t, err, order.ErrValidation)
}

func TestDemoGatewayWithSecretStillChecksSignature(t *testing.T) {
	f := newFixture(payment.DemoGateway{}, secret)
	require.False(t, f.payments.Demo())
	o := f.placeOrder(t, order.MethodOnline)
	in := f.intent(t, o)

	_, err := f.payments.Verify(t.Context(), payment.VerifyRequest{
		RemoteOrderID: in.RemoteOrderID, RemotePaymentID: "demo_pay_1", Signature: "demo",
		OrderID: o.ID, OwnerID: o.OwnerID,
	})
	assert.ErrorIs(t, err, order.ErrSignatureMismatch)
	assert.Equal(t, order.PaymentPending, f.reload(t, o.ID).Payment.Status)

	res, err := f.payments.Verify(t.Context(), signed(o, in.RemoteOrderID, "demo_pay_1"))
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestDemoMode(t *testing.T) {
	f := newFixture(payment.DemoGateway{}, "")
	require.True(t, f.payments.Demo())
	o := f.placeOrder(t, order.MethodOnline)

	in := f.intent(t, o)
	assert.True(t, in.Demo)
	assert.Equal(t, payment.DemoKeyID, in.PublishableKey)
	assert.True(t, strings.HasPrefix(in.RemoteOrderID, "demo_order_"))
	assert.Equal(t, int64(130000), in.Amount)

	// ownership still applies without a signature check
	_, err := f.payments.Verify(t.Context(), payment.VerifyRequest{
		RemoteOrderID: in.RemoteOrderID, RemotePaymentID: "demo_pay_1", Signature: "demo",
		OrderID: o.ID, OwnerID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, order.ErrForbidden)

	res, err := f.payments.Verify(t.Context(), payment.VerifyRequest{
		RemoteOrderID: in.RemoteOrderID, RemotePaymentID: "demo_pay_1", Signature: "demo",
		OrderID: o.ID, OwnerID: o.OwnerID,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, order.StatusProcessing, f.reload(t, o.ID).Status)
}

func TestReportFailureAndRetry(t *testing.T) {
	f := newFixture(&stubGateway{ids: []string{"order_1", "order_2"}}, secret)
	o := f.placeOrder(t, order.MethodOnline)
	f.intent(t, o)

	err := f.payments.ReportFailure(t.Context(), payment.FailRequest{OrderID: o.ID, OwnerID: o.OwnerID, RemoteOrderID: "order_1"})
	require.NoError(t, err)
	got := f.reload(t, o.ID)
	assert.Equal(t, order.PaymentFailed, got.Payment.Status)
	assert.Equal(t, "payment failed", got.Payment.FailureReason)
	assert.Equal(t, order.StatusPending, got.Status)

	// the failed attempt can no longer be completed
	_, err = f.payments.Verify(t.Context(), signed(o, "order_1", "pay_late"))
	assert.ErrorIs(t, err, order.ErrValidation)

	in := f.intent(t, o)
	assert.Equal(t, "order_2", in.RemoteOrderID)
	_, err = f.payments.Verify(t.Context(), signed(o, "order_2", "pay_ok"))
	require.NoError(t, err)

	err = f.payments.ReportFailure(t.Context(), payment.FailRequest{OrderID: o.ID, OwnerID: o.OwnerID, RemoteOrderID: "order_2"})
	assert.ErrorIs(t, err, order.ErrValidation, "a paid order cannot fail")

	err = f.payments.ReportFailure(t.Context(), payment.FailRequest{OrderID: o.ID, OwnerID: uuid.NewString(), RemoteOrderID: "order_2"})
	assert.ErrorIs(t, err, order.ErrForbidden)
}
