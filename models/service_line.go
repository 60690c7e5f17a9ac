package models

import (
	"gorm.io/gorm"
)

// ServiceLine attaches one service selection to a booking. RoomLineID is nil
// for booking-level services (e.g. airport transfer); set, it scopes the
// service to one room (e.g. minibar). Name, category and unit price are
// snapshots so later service edits do not reprice the booking.
type ServiceLine struct {
	gorm.Model

	BookingID  uint  `gorm:"index;column:booking_id" json:"bookingId"`
	RoomLineID *uint `gorm:"index;column:room_line_id" json:"roomLineId,omitempty"`
	ServiceID  uint  `gorm:"index;column:service_id" json:"serviceId"`

	Name      string          `gorm:"size:255" json:"name"`
	Category  ServiceCategory `gorm:"size:32" json:"category"`
	UnitPrice float64         `gorm:"column:unit_price" json:"unitPrice"`
	Quantity  int             `gorm:"default:1" json:"quantity"`

	Service Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}
