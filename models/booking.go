package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking lifecycle statuses. Room lines carry the parallel sub-statuses in
// room_line.go; cancelled exists only at booking level.
const (
	BookingPending   = "pending"
	BookingBooked    = "booked"
	BookingCheckedIn = "checked_in"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Derived payment status, recomputed from settled payments vs total price.
const (
	PaymentStatusUnpaid    = "unpaid"
	PaymentStatusPartially = "partially_paid"
	PaymentStatusPaid      = "paid"
	PaymentStatusRefunded  = "refunded"
)

// Booking is the reservation aggregate. It owns its room lines and service
// lines; rooms and types are referenced, never owned.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Code is the human-readable reference, BK-MMYY-NNNNN, monotonic per
	// calendar month.
	Code string `gorm:"column:code;size:32;uniqueIndex" json:"code"`

	CustomerID uint `gorm:"index;column:customer_id" json:"customerId"`
	// Denormalized customer snapshot taken at creation time.
	CustomerName     string `gorm:"size:255" json:"customerName"`
	CustomerPhone    string `gorm:"size:32" json:"customerPhone"`
	CustomerEmail    string `gorm:"size:255" json:"customerEmail"`
	CustomerIDNumber string `gorm:"column:customer_id_number;size:64" json:"customerIdNumber"`

	Status        string  `gorm:"size:32;index;default:pending" json:"status"`
	PaymentStatus string  `gorm:"size:32;default:unpaid" json:"paymentStatus"`
	TotalPrice    float64 `gorm:"column:total_price" json:"totalPrice"`

	// Cash settlement bookkeeping.
	MoneyReceived float64 `gorm:"column:money_received" json:"moneyReceived"`
	Change        float64 `json:"change"`

	Note string `gorm:"type:text" json:"note,omitempty"`

	Customer     Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RoomLines    []RoomLine    `gorm:"foreignKey:BookingID" json:"roomLines"`
	ServiceLines []ServiceLine `gorm:"foreignKey:BookingID" json:"serviceLines"`
	Payments     []Payment     `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
}
