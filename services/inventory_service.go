package services

import (
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
)

// InventoryService is the stock collaborator: checkout calls it once per
// minibar-category service consumed by a checked-out room.
type InventoryService struct {
	DB *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{DB: db}
}

// Deduct lowers an item's stock. Stock may go negative; the count is
// corrected by the next physical stocktake rather than blocking a checkout.
func (s *InventoryService) Deduct(itemID uint, qty int) error {
	res := s.DB.Model(&models.InventoryItem{}).
		Where("id = ?", itemID).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return wrapDB(res.Error, "inventory item")
	}
	if res.RowsAffected == 0 {
		return NotFoundf("inventory item %d not found", itemID)
	}
	return nil
}

// Consume deducts stock and writes the consumption record for one service on
// one checked-out room.
func (s *InventoryService) Consume(bookingID, roomLineID, serviceID, itemID uint, qty int) error {
	if qty < 1 {
		qty = 1
	}
	if err := s.Deduct(itemID, qty); err != nil {
		return err
	}
	rec := models.InventoryConsumption{
		BookingID:       bookingID,
		RoomLineID:      roomLineID,
		InventoryItemID: itemID,
		ServiceID:       serviceID,
		Quantity:        qty,
		ConsumedAt:      time.Now(),
	}
	if err := s.DB.Create(&rec).Error; err != nil {
		return wrapDB(err, "inventory consumption")
	}
	return nil
}

func (s *InventoryService) ListItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.DB.Order("name ASC").Find(&items).Error; err != nil {
		return nil, wrapDB(err, "inventory items")
	}
	return items, nil
}
