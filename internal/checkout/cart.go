package checkout

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/evercart/internal/order"
)

// Listener receives a copy of the cart contents after every change.
type Listener func(items []order.LineItem)

// Cart holds the line items of one checkout session. Listeners are notified
// after the change is applied and outside the cart's lock.
type Cart struct {
	mu        sync.Mutex
	items     []order.LineItem
	listeners map[int]Listener
	nextID    int
}

func NewCart() *Cart {
	return &Cart{listeners: make(map[int]Listener)}
}

// Subscribe registers fn and returns a func that removes it.
func (c *Cart) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Add puts item in the cart, merging quantities with an existing line for the same product.
func (c *Cart) Add(item order.LineItem) error {
	if item.ProductID == "" {
		return order.Invalid("productId", "is required")
	}
	if item.Quantity < 1 {
		return order.Invalid("quantity", "must be at least 1")
	}
	c.update(func(items []order.LineItem) ([]order.LineItem, bool) {
		if _, i, ok := lo.FindIndexOf(items, func(it order.LineItem) bool { return it.ProductID == item.ProductID }); ok {
			items[i].Quantity += item.Quantity
			return items, true
		}
		return append(items, item), true
	})
	return nil
}

// SetQuantity changes a line's quantity; zero removes the line.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return order.Invalid("quantity", "must not be negative")
	}
	found := c.update(func(items []order.LineItem) ([]order.LineItem, bool) {
		_, i, ok := lo.FindIndexOf(items, func(it order.LineItem) bool { return it.ProductID == productID })
		if !ok {
			return items, false
		}
		if qty == 0 {
			return append(items[:i], items[i+1:]...), true
		}
		items[i].Quantity = qty
		return items, true
	})
	if !found {
		return fmt.Errorf("product %s: %w", productID, order.Invalid("productId", "is not in the cart"))
	}
	return nil
}

func (c *Cart) Remove(productID string) {
	c.update(func(items []order.LineItem) ([]order.LineItem, bool) {
		kept := lo.Reject(items, func(it order.LineItem, _ int) bool { return it.ProductID == productID })
		return kept, len(kept) != len(items)
	})
}

func (c *Cart) Clear() {
	c.update(func(items []order.LineItem) ([]order.LineItem, bool) { return nil, len(items) > 0 })
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []order.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]order.LineItem(nil), c.items...)
}

func (c *Cart) Subtotal() decimal.Decimal {
	return lo.Reduce(c.Items(), func(acc decimal.Decimal, it order.LineItem, _ int) decimal.Decimal {
		return acc.Add(it.Amount())
	}, decimal.Zero)
}

// Count is the total quantity across lines.
func (c *Cart) Count() int {
	return lo.SumBy(c.Items(), func(it order.LineItem) int { return it.Quantity })
}

// update applies fn and notifies listeners when fn reports a change.
func (c *Cart) update(fn func([]order.LineItem) ([]order.LineItem, bool)) bool {
	c.mu.Lock()
	items, changed := fn(c.items)
	c.items = items
	if !changed {
		c.mu.Unlock()
		return false
	}
	snapshot := append([]order.LineItem(nil), c.items...)
	ids := lo.Keys(c.listeners)
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, c.listeners[id])
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(append([]order.LineItem(nil), snapshot...))
	}
	return true
}
