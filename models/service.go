package models

import (
	"gorm.io/gorm"
)

// ServiceCategory selects the pricing rule for a sellable add-on. Modeled as a
// typed string so the price switch can be exhaustive.
type ServiceCategory string

const (
	ServicePerUnit        ServiceCategory = "per_unit"
	ServicePerDuration    ServiceCategory = "per_duration"
	ServicePerPerson      ServiceCategory = "per_person"
	ServiceFixed          ServiceCategory = "fixed"
	ServiceTransportation ServiceCategory = "transportation"
	ServiceMinibar        ServiceCategory = "minibar"
)

// Service is a sellable add-on. Minibar services link to an inventory item so
// checkout can deduct stock.
type Service struct {
	gorm.Model

	Name        string          `gorm:"size:255" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       float64         `json:"price"`
	Category    ServiceCategory `gorm:"size:32" json:"category"`

	InventoryItemID *uint `gorm:"index;column:inventory_item_id" json:"inventoryItemId,omitempty"`
}
