package models

import (
	"time"

	"gorm.io/gorm"
)

// InventoryItem backs stock-deducting services (minibar).
type InventoryItem struct {
	gorm.Model

	Name  string `gorm:"size:255" json:"name"`
	Unit  string `gorm:"size:32" json:"unit"`
	Stock int    `json:"stock"`
}

// InventoryConsumption records one minibar deduction at checkout: one row per
// consumed service per checked-out room.
type InventoryConsumption struct {
	gorm.Model

	BookingID       uint `gorm:"index;column:booking_id" json:"bookingId"`
	RoomLineID      uint `gorm:"index;column:room_line_id" json:"roomLineId"`
	InventoryItemID uint `gorm:"index;column:inventory_item_id" json:"inventoryItemId"`
	ServiceID       uint `gorm:"index;column:service_id" json:"serviceId"`

	Quantity   int       `json:"quantity"`
	ConsumedAt time.Time `gorm:"column:consumed_at" json:"consumedAt"`
}
