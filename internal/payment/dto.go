package payment

import "github.com/shopspring/decimal"

// CreateIntentRequest payload of payment intent creation. Amount is in major units.
// swagger:model CreateIntentRequest
type CreateIntentRequest struct {
	OrderID string          `json:"orderId" example:"3f0c2a4e-1b9d-4c55-9a57-2f1b8f2d9a10"`
	Amount  decimal.Decimal `json:"amount"  swaggertype:"string" example:"1300.00"`
	OwnerID string          `json:"ownerId" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
}

// Intent is handed to the gateway checkout UI. Amount is in minor units.
// swagger:model Intent
type Intent struct {
	OrderID        string `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	RemoteOrderID  string `json:"remoteOrderId"  example:"order_abc"`
	PublishableKey string `json:"publishableKey" example:"rzp_test_1DP5mmOlF5G5ag"`
	Amount         int64  `json:"amount"         example:"130000"`
	Currency       string `json:"currency"       example:"INR"`
	Description    string `json:"description"`
	Demo           bool   `json:"demo"`
}

// VerifyRequest carries the signed fields of a gateway completion callback.
// swagger:model VerifyRequest
type VerifyRequest struct {
	RemoteOrderID   string `json:"remoteOrderId"   example:"order_abc"`
	RemotePaymentID string `json:"remotePaymentId" example:"pay_xyz"`
	Signature       string `json:"signature"`
	OrderID         string `json:"orderId"`
	OwnerID         string `json:"ownerId"`
}

// VerifyResponse reports a verified payment.
// swagger:model VerifyResponse
type VerifyResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
}

// FailRequest reports a payment the gateway declined.
// swagger:model FailRequest
type FailRequest struct {
	OrderID       string `json:"orderId"`
	OwnerID       string `json:"ownerId"`
	RemoteOrderID string `json:"remoteOrderId"`
	Reason        string `json:"reason" example:"card declined"`
}
