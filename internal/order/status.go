package order

import "fmt"

type Status string

// remember to add new statuses to statusRank
const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusRank orders the fulfilment path; cancelled sits outside it.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
	StatusCancelled:  -1,
}

func ToStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := statusRank[status]; ok {
		return status, nil
	}
	return "", Invalid("orderStatus", fmt.Sprintf("invalid order status %q", s))
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanMoveTo reports whether an administrative update from s to next is allowed:
// forward along the fulfilment path, or to cancelled, never out of a terminal state.
func (s Status) CanMoveTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

type PaymentMethod string

const (
	MethodOnline PaymentMethod = "online"
	MethodCOD    PaymentMethod = "cod"
)

func ToPaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case MethodOnline, MethodCOD:
		return m, nil
	}
	return "", Invalid("paymentMethod", fmt.Sprintf("invalid payment method %q", s))
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

func ToPaymentStatus(s string) (PaymentStatus, error) {
	switch p := PaymentStatus(s); p {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled:
		return p, nil
	}
	return "", Invalid("paymentStatus", fmt.Sprintf("invalid payment status %q", s))
}
