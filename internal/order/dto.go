package order

import "github.com/shopspring/decimal"

// CreateOrderRequest payload of order creation.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	OwnerID         string              `json:"ownerId"  example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Items           []LineItem          `json:"items"`
	ShippingAddress ShippingAddress     `json:"shippingAddress"`
	Subtotal        decimal.NullDecimal `json:"subtotal" swaggertype:"string" example:"1300.00"`
	Total           decimal.NullDecimal `json:"total"    swaggertype:"string" example:"1300.00"`
	PaymentMethod   string              `json:"paymentMethod" example:"online" enums:"online,cod"`
}

func (r CreateOrderRequest) Input() CreateInput {
	return CreateInput{
		OwnerID:         r.OwnerID,
		Items:           r.Items,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		Subtotal:        r.Subtotal,
		Total:           r.Total,
	}
}

// CreateOrderResponse wraps the created order.
// swagger:model CreateOrderResponse
type CreateOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Order   Order  `json:"order"`
}

// UpdateStatusRequest payload of an administrative status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	OrderStatus string `json:"orderStatus" example:"shipped" enums:"pending,confirmed,processing,shipped,delivered,cancelled"`
}

// ListResponse represents a page of orders.
// swagger:model OrderListResponse
type ListResponse struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
