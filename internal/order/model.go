package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a checkout submission. Items and ShippingAddress are snapshots taken
// when the order is created and are never rewritten afterwards.
type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"orderId"`
	OwnerID         string          `json:"ownerId"`
	Items           []LineItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          Status          `json:"orderStatus"`
	Payment         Payment         `json:"payment"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type LineItem struct {
	ProductID string          `json:"productId" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Name      string          `json:"name"      example:"Wireless Mouse"`
	Brand     string          `json:"brand,omitempty" example:"Logitech"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"string" example:"500.00"`
	Quantity  int             `json:"quantity"  example:"2"`
	Image     string          `json:"image,omitempty"`
}

// Amount is UnitPrice × Quantity.
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type ShippingAddress struct {
	FirstName string `json:"firstName" example:"Asha"`
	LastName  string `json:"lastName"  example:"Rao"`
	Email     string `json:"email"     example:"asha@example.com"`
	Phone     string `json:"phone"     example:"9876543210"`
	Address   string `json:"address"   example:"12 MG Road"`
	City      string `json:"city"      example:"Bengaluru"`
	State     string `json:"state"     example:"KA"`
	ZipCode   string `json:"zipCode"   example:"560001"`
}

// missing returns the json names of empty fields.
func (a ShippingAddress) missing() []string {
	fields := []struct {
		name, value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
	}
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// Payment is the payment sub-record of an order.
type Payment struct {
	Method          PaymentMethod       `json:"method"`
	Status          PaymentStatus       `json:"status"`
	RemoteOrderID   string              `json:"remoteOrderId,omitempty"`
	RemotePaymentID string              `json:"remotePaymentId,omitempty"`
	TransactionID   string              `json:"transactionId,omitempty"`
	Amount          decimal.NullDecimal `json:"amount" swaggertype:"string"`
	Currency        string              `json:"currency"`
	FailureReason   string              `json:"failureReason,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
	FailedAt        *time.Time          `json:"failedAt,omitempty"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
}

// Completion is what a verified gateway callback writes onto the payment sub-record.
type Completion struct {
	RemoteOrderID   string
	RemotePaymentID string
	Amount          decimal.Decimal
	Currency        string
	At              time.Time
}

// Intent is what creating a gateway payment intent writes onto the payment sub-record.
type Intent struct {
	RemoteOrderID string
	Amount        decimal.Decimal
	Currency      string
}

// Clone returns a deep copy so callers cannot mutate stored snapshots.
func (o Order) Clone() Order {
	cp := o
	cp.Items = append([]LineItem(nil), o.Items...)
	cp.Payment.CompletedAt = cloneTime(o.Payment.CompletedAt)
	cp.Payment.FailedAt = cloneTime(o.Payment.FailedAt)
	cp.Payment.CancelledAt = cloneTime(o.Payment.CancelledAt)
	return cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
