package models

import (
	"gorm.io/gorm"
)

// Persistent room status. Distinct from the availability resolver's
// visibleStatus, which answers "is this room free for a date range".
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

const (
	HousekeepingClean    = "clean"
	HousekeepingDirty    = "dirty"
	HousekeepingCleaning = "cleaning"
)

// Room is a physical unit. Never hard-deleted while referenced by a booking
// (soft delete only).
type Room struct {
	gorm.Model

	RoomTypeID uint   `gorm:"index;column:room_type_id" json:"roomTypeId"`
	RoomNumber string `gorm:"column:room_number;uniqueIndex;type:varchar(50)" json:"roomNumber"`
	Floor      string `gorm:"type:varchar(10)" json:"floor"`

	Status             string `gorm:"size:32;default:available" json:"status"`
	HousekeepingStatus string `gorm:"size:32;default:clean" json:"housekeepingStatus"`
	DoNotDisturb       bool   `gorm:"default:false" json:"doNotDisturb"`

	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`
}
