package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// NumberPrefix namespaces human-facing order numbers.
const NumberPrefix = "EVR-"

// Amounts are stored as NUMERIC(14,2).
const storeScale = 2

// maxAmount bounds every price and total, exclusive.
var maxAmount = decimal.New(1, 12)

type Service struct {
	repo     Repository
	currency string
	// scale is the number of decimals a price may carry.
	scale int32
	now   func() time.Time
}

func NewService(repo Repository, cur string) *Service {
	scale := int32(storeScale)
	if unit, err := currency.ParseISO(cur); err == nil {
		digits, _ := currency.Standard.Rounding(unit)
		scale = min(scale, int32(digits))
	}
	return &Service{repo: repo, currency: cur, scale: scale, now: time.Now}
}

// CreateInput is a cart snapshot submitted at checkout. Subtotal and Total are the
// amounts the client displayed; when present they must match the recomputed values.
type CreateInput struct {
	OwnerID         string
	Items           []LineItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Subtotal        decimal.NullDecimal
	Total           decimal.NullDecimal
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	var missing []string
	if strings.TrimSpace(in.OwnerID) == "" {
		missing = append(missing, "ownerId")
	}
	if len(in.Items) == 0 {
		missing = append(missing, "items")
	}
	if in.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}
	if len(missing) > 0 {
		return nil, Missing(missing...)
	}

	method, err := ToPaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if fields := in.ShippingAddress.missing(); len(fields) > 0 {
		return nil, Invalid("shippingAddress", "missing "+strings.Join(fields, ", "))
	}

	subtotal := decimal.Zero
	items := make([]LineItem, 0, len(in.Items))
	for i, it := range in.Items {
		if err := s.validateItem(i, it); err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(it.Amount())
		items = append(items, it)
	}
	total := subtotal
	if !total.LessThan(maxAmount) {
		return nil, Invalid("total", "exceeds "+maxAmount.Sub(decimal.New(1, -storeScale)).StringFixed(storeScale))
	}

	if in.Subtotal.Valid && !in.Subtotal.Decimal.Equal(subtotal) {
		return nil, Invalid("subtotal", fmt.Sprintf("expected %s from line items", subtotal.StringFixed(2)))
	}
	if in.Total.Valid && !in.Total.Decimal.Equal(total) {
		return nil, Invalid("total", fmt.Sprintf("expected %s from line items", total.StringFixed(2)))
	}

	now := s.now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		Number:          NewNumber(),
		OwnerID:         in.OwnerID,
		Items:           items,
		Subtotal:        subtotal,
		Tax:             decimal.Zero,
		Shipping:        decimal.Zero,
		Total:           total,
		ShippingAddress: in.ShippingAddress,
		Status:          lo.Ternary(method == MethodCOD, StatusConfirmed, StatusPending),
		Payment: Payment{
			Method:   method,
			Status:   PaymentPending,
			Currency: s.currency,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("order.Create: %w", err)
	}
	return o, nil
}

func (s *Service) validateItem(i int, it LineItem) error {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

	switch {
	case strings.TrimSpace(it.ProductID) == "":
		return Invalid(field("productId"), "is required")
	case strings.TrimSpace(it.Name) == "":
		return Invalid(field("name"), "is required")
	case it.Quantity < 1:
		return Invalid(field("quantity"), "must be at least 1")
	case it.UnitPrice.IsNegative():
		return Invalid(field("unitPrice"), "must not be negative")
	case !it.UnitPrice.Shift(s.scale).IsInteger():
		return Invalid(field("unitPrice"), fmt.Sprintf("must have at most %d decimals for %s", s.scale, s.currency))
	case !it.UnitPrice.LessThan(maxAmount):
		return Invalid(field("unitPrice"), "is too large")
	}
	return nil
}

// NewNumber returns a human-facing order number. UUIDv7 keeps numbers unique
// and roughly ordered by creation time.
func NewNumber() string {
	return NumberPrefix + uuid.Must(uuid.NewV7()).String()
}

// Find resolves ref as an internal id or, failing that, a human-facing order number.
func Find(ctx context.Context, repo Repository, ref string) (*Order, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, Missing("orderId")
	}
	if _, err := uuid.Parse(ref); err == nil {
		o, err := repo.GetByID(ctx, ref)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return o, err
		}
	}
	return repo.GetByNumber(ctx, ref)
}

func (s *Service) Get(ctx context.Context, ref string) (*Order, error) {
	return Find(ctx, s.repo, ref)
}

// GetOwned is Get restricted to the order's owner.
func (s *Service) GetOwned(ctx context.Context, ref, ownerID string) (*Order, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, Missing("ownerId")
	}
	o, err := Find(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != ownerID {
		return nil, fmt.Errorf("order %s: %w", o.Number, ErrForbidden)
	}
	return o, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Order, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, Missing("ownerId")
	}
	return s.repo.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateStatus applies an administrative status change.
func (s *Service) UpdateStatus(ctx context.Context, ref, status string) (*Order, error) {
	if status == "" {
		return nil, Missing("orderStatus")
	}
	next, err := ToStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := Find(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}
	if o.Status == next {
		return o, nil
	}
	if !o.Status.CanMoveTo(next) {
		return nil, Invalid("orderStatus", fmt.Sprintf("cannot move order from %s to %s", o.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, o.Status, next); err != nil {
		return nil, fmt.Errorf("order.UpdateStatus: %w", err)
	}
	return s.repo.GetByID(ctx, o.ID)
}
