package order

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schemaSQL string

// Repository is the Order Store. The payment transitions are conditional writes:
// they report applied=false instead of overwriting a payment that already moved on.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	SetPaymentIntent(ctx context.Context, id string, in Intent) (bool, error)
	CompletePayment(ctx context.Context, id string, c Completion) (bool, error)
	FailPayment(ctx context.Context, id, remoteOrderID, reason string, at time.Time) (bool, error)
	CancelStalePayments(ctx context.Context, createdBefore, at time.Time) ([]string, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Migrate creates the orders schema if it does not exist.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("db.Exec schema: %w", err)
	}
	return nil
}

const selectOrder = `
	SELECT id::text, order_number, owner_id,
	       subtotal::text, tax::text, shipping::text, total::text,
	       shipping_address, order_status,
	       payment_method, payment_status,
	       COALESCE(remote_order_id, ''), COALESCE(remote_payment_id, ''), COALESCE(transaction_id, ''),
	       payment_amount::text, currency, COALESCE(failure_reason, ''),
	       completed_at, failed_at, cancelled_at,
	       created_at, updated_at
	FROM orders`

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO orders (id, order_number, owner_id, subtotal, tax, shipping, total,
			                    shipping_address, order_status, payment_method, payment_status,
			                    currency, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`, o.ID, o.Number, o.OwnerID,
			o.Subtotal.String(), o.Tax.String(), o.Shipping.String(), o.Total.String(),
			o.ShippingAddress, string(o.Status), string(o.Payment.Method), string(o.Payment.Status),
			o.Payment.Currency, o.CreatedAt, o.UpdatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		batch := &pgx.Batch{}
		for i, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (id, order_id, position, product_id, name, brand, unit_price, quantity, image)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			`, uuid.NewString(), o.ID, i, it.ProductID, it.Name, it.Brand, it.UnitPrice.String(), it.Quantity, it.Image)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return storeErr("repo.Create", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, "repo.GetByID", selectOrder+` WHERE id = $1`, id)
}

func (r *PGRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, "repo.GetByNumber", selectOrder+` WHERE order_number = $1`, number)
}

func (r *PGRepo) getOne(ctx context.Context, op, query string, arg string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, storeErr(op, err)
	}

	items, err := r.items(ctx, []string{o.ID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Order, error) {
	limit, offset = page(limit, offset)
	return r.list(ctx, "repo.ListByOwner", selectOrder+`
		WHERE owner_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Order, error) {
	limit, offset = page(limit, offset)
	return r.list(ctx, "repo.List", selectOrder+`
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r *PGRepo) list(ctx context.Context, op, query string, args ...any) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}

	ids := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *PGRepo) items(ctx context.Context, orderIDs []string) (map[string][]LineItem, error) {
	out := make(map[string][]LineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id::text, product_id, name, brand, unit_price::text, quantity, image
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID, price string
			it             LineItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Brand, &price, &it.Quantity, &it.Image); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("unit price[%s]: %w", price, err)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET order_status = $3, updated_at = NOW()
		WHERE id = $1 AND order_status = $2
	`, id, string(from), string(to))
	if err != nil {
		return storeErr("repo.UpdateStatus", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, "repo.UpdateStatus", id)
	}
	return nil
}

func (r *PGRepo) SetPaymentIntent(ctx context.Context, id string, in Intent) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'pending',
		    remote_order_id = $2,
		    payment_amount = $3,
		    currency = $4,
		    remote_payment_id = NULL,
		    transaction_id = NULL,
		    failure_reason = NULL,
		    failed_at = NULL,
		    cancelled_at = NULL,
		    updated_at = NOW()
		WHERE id = $1
		  AND payment_method = 'online'
		  AND payment_status <> 'completed'
		  AND order_status = 'pending'
	`, id, in.RemoteOrderID, in.Amount.String(), in.Currency)
	if err != nil {
		return false, storeErr("repo.SetPaymentIntent", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRepo) CompletePayment(ctx context.Context, id string, c Completion) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'completed',
		    order_status = 'processing',
		    remote_payment_id = $3,
		    transaction_id = $3,
		    payment_amount = $4,
		    currency = $5,
		    completed_at = $6,
		    updated_at = NOW()
		WHERE id = $1
		  AND remote_order_id = $2
		  AND payment_status = 'pending'
	`, id, c.RemoteOrderID, c.RemotePaymentID, c.Amount.String(), c.Currency, c.At)
	if err != nil {
		return false, storeErr("repo.CompletePayment", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRepo) FailPayment(ctx context.Context, id, remoteOrderID, reason string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'failed',
		    failure_reason = $3,
		    failed_at = $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND remote_order_id = $2
		  AND payment_status = 'pending'
	`, id, remoteOrderID, reason, at)
	if err != nil {
		return false, storeErr("repo.FailPayment", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRepo) CancelStalePayments(ctx context.Context, createdBefore, at time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		UPDATE orders
		SET payment_status = 'cancelled',
		    order_status = 'cancelled',
		    cancelled_at = $2,
		    updated_at = NOW()
		WHERE payment_method = 'online'
		  AND order_status = 'pending'
		  AND payment_status IN ('pending', 'failed')
		  AND created_at < $1
		RETURNING id::text
	`, createdBefore, at)
	if err != nil {
		return nil, storeErr("repo.CancelStalePayments", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storeErr("repo.CancelStalePayments", err)
	}
	return ids, nil
}

func (r *PGRepo) missingOrConflict(ctx context.Context, op, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return storeErr(op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, ErrConflict)
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                              Order
		subtotal, tax, shipping, total string
		status, method, paymentStatus  string
		paymentAmount                  *string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.OwnerID,
		&subtotal, &tax, &shipping, &total,
		&o.ShippingAddress, &status,
		&method, &paymentStatus,
		&o.Payment.RemoteOrderID, &o.Payment.RemotePaymentID, &o.Payment.TransactionID,
		&paymentAmount, &o.Payment.Currency, &o.Payment.FailureReason,
		&o.Payment.CompletedAt, &o.Payment.FailedAt, &o.Payment.CancelledAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&o.Subtotal, subtotal}, {&o.Tax, tax}, {&o.Shipping, shipping}, {&o.Total, total}} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return o, fmt.Errorf("amount[%s]: %w", f.src, err)
		}
	}
	if paymentAmount != nil {
		amount, err := decimal.NewFromString(*paymentAmount)
		if err != nil {
			return o, fmt.Errorf("payment amount[%s]: %w", *paymentAmount, err)
		}
		o.Payment.Amount = decimal.NewNullDecimal(amount)
	}

	if o.Status, err = ToStatus(status); err != nil {
		return o, fmt.Errorf("ToStatus[%s]: %w", status, err)
	}
	if o.Payment.Method, err = ToPaymentMethod(method); err != nil {
		return o, fmt.Errorf("ToPaymentMethod[%s]: %w", method, err)
	}
	if o.Payment.Status, err = ToPaymentStatus(paymentStatus); err != nil {
		return o, fmt.Errorf("ToPaymentStatus[%s]: %w", paymentStatus, err)
	}
	return o, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
