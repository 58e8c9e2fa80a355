package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemRepo is an in-process Order Store used when no database is configured.
type MemRepo struct {
	mu       sync.RWMutex
	byID     map[string]*Order
	byNumber map[string]string
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		byID:     make(map[string]*Order),
		byNumber: make(map[string]string),
	}
}

func (r *MemRepo) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[o.ID]; ok {
		return fmt.Errorf("repo.Create: %w: duplicate id %s", ErrPersistence, o.ID)
	}
	if _, ok := r.byNumber[o.Number]; ok {
		return fmt.Errorf("repo.Create: %w: duplicate order number %s", ErrPersistence, o.Number)
	}
	cp := o.Clone()
	r.byID[o.ID] = &cp
	r.byNumber[o.Number] = o.ID
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("repo.GetByID: %w", ErrNotFound)
	}
	cp := o.Clone()
	return &cp, nil
}

func (r *MemRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	r.mu.RLock()
	id, ok := r.byNumber[number]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("repo.GetByNumber: %w", ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *MemRepo) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]Order, error) {
	return r.list(func(o *Order) bool { return o.OwnerID == ownerID }, limit, offset), nil
}

func (r *MemRepo) List(_ context.Context, limit, offset int) ([]Order, error) {
	return r.list(func(*Order) bool { return true }, limit, offset), nil
}

func (r *MemRepo) list(keep func(*Order) bool, limit, offset int) []Order {
	limit, offset = page(limit, offset)

	r.mu.RLock()
	out := []Order{}
	for _, o := range r.byID {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Order{}
	}
	end := min(offset+limit, len(out))
	return out[offset:end]
}

func (r *MemRepo) UpdateStatus(_ context.Context, id string, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("repo.UpdateStatus: %w", ErrNotFound)
	}
	if o.Status != from {
		return fmt.Errorf("repo.UpdateStatus: %w", ErrConflict)
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemRepo) SetPaymentIntent(_ context.Context, id string, in Intent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok || o.Payment.Method != MethodOnline || o.Payment.Status == PaymentCompleted || o.Status != StatusPending {
		return false, nil
	}
	o.Payment = Payment{
		Method:        o.Payment.Method,
		Status:        PaymentPending,
		RemoteOrderID: in.RemoteOrderID,
		Currency:      in.Currency,
	}
	o.Payment.Amount.Decimal, o.Payment.Amount.Valid = in.Amount, true
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *MemRepo) CompletePayment(_ context.Context, id string, c Completion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok || o.Payment.Status != PaymentPending || o.Payment.RemoteOrderID != c.RemoteOrderID {
		return false, nil
	}
	at := c.At
	o.Payment.Status = PaymentCompleted
	o.Payment.RemotePaymentID = c.RemotePaymentID
	o.Payment.TransactionID = c.RemotePaymentID
	o.Payment.Amount.Decimal, o.Payment.Amount.Valid = c.Amount, true
	o.Payment.Currency = c.Currency
	o.Payment.CompletedAt = &at
	o.Status = StatusProcessing
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *MemRepo) FailPayment(_ context.Context, id, remoteOrderID, reason string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok || o.Payment.Status != PaymentPending || o.Payment.RemoteOrderID != remoteOrderID {
		return false, nil
	}
	o.Payment.Status = PaymentFailed
	o.Payment.FailureReason = reason
	o.Payment.FailedAt = &at
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *MemRepo) CancelStalePayments(_ context.Context, createdBefore, at time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, o := range r.byID {
		if o.Payment.Method != MethodOnline || o.Status != StatusPending || !o.CreatedAt.Before(createdBefore) {
			continue
		}
		if o.Payment.Status != PaymentPending && o.Payment.Status != PaymentFailed {
			continue
		}
		cancelledAt := at
		o.Payment.Status = PaymentCancelled
		o.Payment.CancelledAt = &cancelledAt
		o.Status = StatusCancelled
		o.UpdatedAt = time.Now().UTC()
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
