package order

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOnlineOrder(created time.Time) *Order {
	return &Order{
		ID:      uuid.NewString(),
		Number:  NewNumber(),
		OwnerID: uuid.NewString(),
		Items: []LineItem{
			{ProductID: uuid.NewString(), Name: "Lamp", UnitPrice: decimal.RequireFromString("650.00"), Quantity: 2},
		},
		Subtotal:        decimal.RequireFromString("1300.00"),
		Tax:             decimal.Zero,
		Shipping:        decimal.Zero,
		Total:           decimal.RequireFromString("1300.00"),
		ShippingAddress: ShippingAddress{FirstName: "A", LastName: "B", Email: "a@b.c", Phone: "1", Address: "x", City: "y", State: "z", ZipCode: "0"},
		Status:          StatusPending,
		Payment:         Payment{Method: MethodOnline, Status: PaymentPending, Currency: "INR"},
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func TestMemRepo_CompletePaymentOnce(t *testing.T) {
	ctx := t.Context()
	repo := NewMemRepo()
	o := newOnlineOrder(time.Now())
	require.NoError(t, repo.Create(ctx, o))

	applied, err := repo.SetPaymentIntent(ctx, o.ID, Intent{RemoteOrderID: "order_abc", Amount: o.Total, Currency: "INR"})
	require.NoError(t, err)
	require.True(t, applied)

	var (
		wins atomic.Int32
		wg   sync.WaitGroup
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CompletePayment(ctx, o.ID, Completion{
				RemoteOrderID:   "order_abc",
				RemotePaymentID: "pay_xyz",
				Amount:          o.Total,
				Currency:        "INR",
				At:              time.Now(),
			})
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, got.Payment.Status)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, "pay_xyz", got.Payment.TransactionID)
}

func TestMemRepo_CompletePaymentWrongRemoteOrder(t *testing.T) {
	ctx := t.Context()
	repo := NewMemRepo()
	o := newOnlineOrder(time.Now())
	require.NoError(t, repo.Create(ctx, o))
	_, err := repo.SetPaymentIntent(ctx, o.ID, Intent{RemoteOrderID: "order_abc", Amount: o.Total, Currency: "INR"})
	require.NoError(t, err)

	applied, err := repo.CompletePayment(ctx, o.ID, Completion{RemoteOrderID: "order_other", RemotePaymentID: "pay_1", At: time.Now()})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestMemRepo_FailThenNewIntent(t *testing.T) {
	ctx := t.Context()
	repo := NewMemRepo()
	o := newOnlineOrder(time.Now())
	require.NoError(t, repo.Create(ctx, o))
	_, err := repo.SetPaymentIntent(ctx, o.ID, Intent{RemoteOrderID: "order_1", Amount: o.Total, Currency: "INR"})
	require.NoError(t, err)

	applied, err := repo.FailPayment(ctx, o.ID, "order_1", "card declined", time.Now())
	require.NoError(t, err)
	require.True(t, applied)

	// a second report for the same attempt is a no-op
	applied, err = repo.FailPayment(ctx, o.ID, "order_1", "card declined", time.Now())
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.SetPaymentIntent(ctx, o.ID, Intent{RemoteOrderID: "order_2", Amount: o.Total, Currency: "INR"})
	require.NoError(t, err)
	require.True(t, applied)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, got.Payment.Status)
	assert.Equal(t, "order_2", got.Payment.RemoteOrderID)
	assert.Empty(t, got.Payment.FailureReason)
	assert.Nil(t, got.Payment.FailedAt)
}

func TestMemRepo_UpdateStatusConflict(t *testing.T) {
	ctx := t.Context()
	repo := NewMemRepo()
	o := newOnlineOrder(time.Now())
	require.NoError(t, repo.Create(ctx, o))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, o.ID, StatusConfirmed, StatusShipped), ErrConflict)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.NewString(), StatusPending, StatusShipped), ErrNotFound)
	assert.NoError(t, repo.UpdateStatus(ctx, o.ID, StatusPending, StatusCancelled))
}

func TestMemRepo_DuplicateNumber(t *testing.T) {
	ctx := t.Context()
	repo := NewMemRepo()
	o := newOnlineOrder(time.Now())
	require.NoError(t, repo.Create(ctx, o))

	dup := newOnlineOrder(time.Now())
	dup.Number = o.Number
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrPersistence)
}
