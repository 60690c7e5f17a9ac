package models

import (
	"time"

	"gorm.io/gorm"
)

// Per-payment status. Terminal states (paid, failed, refunded) short-circuit
// gateway callbacks — the idempotency boundary for payment-return handling.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

const (
	MethodCash    = "cash"
	MethodCard    = "card"
	MethodGateway = "gateway"
)

// Payment is one settlement record against a booking. Multiple payments per
// booking are normal (deposits, partial settlements); the booking's
// paymentStatus is derived from the sum of paid ones, never stored as truth.
type Payment struct {
	gorm.Model

	BookingID uint   `gorm:"index;column:booking_id" json:"bookingId"`
	Reference string `gorm:"size:64;uniqueIndex" json:"reference"`

	Amount   float64 `json:"amount"`
	Method   string  `gorm:"size:32" json:"method"`
	Category string  `gorm:"size:32" json:"category"`
	Status   string  `gorm:"size:32;default:pending" json:"status"`

	PaidAt *time.Time `gorm:"column:paid_at" json:"paidAt,omitempty"`
}
