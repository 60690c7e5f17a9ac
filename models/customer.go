package models

import (
	"gorm.io/gorm"
)

// Customer is the directory record bookings reference. Bookings keep their own
// snapshot of these fields so they survive customer edits or deletion.
type Customer struct {
	gorm.Model

	FullName string `gorm:"size:255" json:"fullName"`
	Phone    string `gorm:"size:32" json:"phone"`
	Email    string `gorm:"size:255" json:"email"`
	IDNumber string `gorm:"column:id_number;size:64" json:"idNumber"`
	Address  string `gorm:"type:text" json:"address"`
}
