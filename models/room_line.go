package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room-line sub-statuses. No cancelled here: cancelling happens at booking
// level and releases every line at once.
const (
	LinePending   = "pending"
	LineBooked    = "booked"
	LineCheckedIn = "checked_in"
	LineCompleted = "completed"
)

// RoomLine is one guest-room assignment inside a booking: a desired room type,
// optionally a concrete room (absent until check-in or explicit assignment),
// the stay window and the guests.
//
// Expected dates reserve capacity before check-in; once both actual dates are
// set they become the binding occupancy window for conflict checks.
type RoomLine struct {
	gorm.Model

	BookingID  uint  `gorm:"index;column:booking_id" json:"bookingId"`
	RoomTypeID uint  `gorm:"index;column:room_type_id" json:"roomTypeId"`
	RoomID     *uint `gorm:"index;column:room_id" json:"roomId,omitempty"`

	Status string `gorm:"size:32;default:pending" json:"status"`

	ExpectedCheckIn  *time.Time `gorm:"column:expected_check_in" json:"expectedCheckIn,omitempty"`
	ExpectedCheckOut *time.Time `gorm:"column:expected_check_out" json:"expectedCheckOut,omitempty"`
	ActualCheckIn    *time.Time `gorm:"column:actual_check_in" json:"actualCheckIn,omitempty"`
	ActualCheckOut   *time.Time `gorm:"column:actual_check_out" json:"actualCheckOut,omitempty"`

	Adults   int  `gorm:"default:1" json:"adults"`
	Children int  `gorm:"default:0" json:"children"`
	ExtraBed bool `gorm:"default:false" json:"extraBed"`

	// NightlyPrice is resolved (including any extra-bed surcharge) and frozen
	// at assignment/edit time; type price edits never reach in-flight lines.
	NightlyPrice float64 `gorm:"column:nightly_price" json:"nightlyPrice"`

	MainGuestName     string         `gorm:"size:255" json:"mainGuestName"`
	MainGuestPhone    string         `gorm:"size:32" json:"mainGuestPhone"`
	MainGuestIDNumber string         `gorm:"column:main_guest_id_number;size:64" json:"mainGuestIdNumber"`
	ExtraGuests       datatypes.JSON `gorm:"column:extra_guests" json:"extraGuests,omitempty"`

	// Stamped at check-in so the line keeps its display data if the room or
	// type is later edited.
	RoomNumber string `gorm:"size:50" json:"roomNumber,omitempty"`
	TypeName   string `gorm:"size:100" json:"typeName,omitempty"`

	RoomType     RoomType      `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`
	Room         *Room         `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	ServiceLines []ServiceLine `gorm:"foreignKey:RoomLineID" json:"serviceLines,omitempty"`
}
