package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoomType is a room category ("Double", "Deluxe"...) shared by many physical
// rooms. Bookings snapshot pricing at assignment time, so editing a type never
// changes an in-flight booking.
type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TypeName    string `gorm:"size:100;uniqueIndex" json:"typeName"`
	Description string `gorm:"type:text" json:"description"`

	// Capacity is the guest count included in the nightly price; MaxGuests is
	// the hard limit per room.
	Capacity  int `gorm:"default:2" json:"capacity"`
	MaxGuests int `gorm:"default:2" json:"maxGuests"`

	PricePerNight   float64 `gorm:"column:price_per_night" json:"pricePerNight"`
	ExtraBedAllowed bool    `gorm:"default:false" json:"extraBedAllowed"`
	ExtraBedPrice   float64 `gorm:"column:extra_bed_price" json:"extraBedPrice"`

	Amenities datatypes.JSON `gorm:"column:amenities" json:"amenities,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
