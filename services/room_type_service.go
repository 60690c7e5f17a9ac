package services

import (
	"gorm.io/gorm"

	"hotel-pms/models"
)

type RoomTypeService struct {
	DB *gorm.DB
}

func NewRoomTypeService(db *gorm.DB) *RoomTypeService {
	return &RoomTypeService{DB: db}
}

func (s *RoomTypeService) Create(rt models.RoomType) (models.RoomType, error) {
	if err := validateRoomType(rt); err != nil {
		return rt, err
	}
	if err := s.DB.Create(&rt).Error; err != nil {
		return rt, wrapDB(err, "room type")
	}
	return rt, nil
}

func (s *RoomTypeService) GetAll() ([]models.RoomType, error) {
	var types []models.RoomType
	if err := s.DB.Order("type_name ASC").Find(&types).Error; err != nil {
		return nil, wrapDB(err, "room types")
	}
	return types, nil
}

func (s *RoomTypeService) GetByID(id uint) (models.RoomType, error) {
	var rt models.RoomType
	if err := s.DB.First(&rt, id).Error; err != nil {
		return rt, wrapDB(err, "room type")
	}
	return rt, nil
}

// Update edits the catalog entry. Existing bookings are untouched: nightly
// prices are frozen onto room lines at assignment time.
func (s *RoomTypeService) Update(rt models.RoomType) error {
	if err := validateRoomType(rt); err != nil {
		return err
	}
	if err := s.DB.Model(&models.RoomType{}).Where("id = ?", rt.ID).Updates(rt).Error; err != nil {
		return wrapDB(err, "room type")
	}
	return nil
}

func (s *RoomTypeService) Delete(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Room{}).Where("room_type_id = ?", id).Count(&count).Error; err != nil {
		return wrapDB(err, "rooms")
	}
	if count > 0 {
		return InvalidTransitionf("room type still has %d room(s)", count)
	}
	if err := s.DB.Delete(&models.RoomType{}, id).Error; err != nil {
		return wrapDB(err, "room type")
	}
	return nil
}

func validateRoomType(rt models.RoomType) error {
	if rt.TypeName == "" {
		return Validationf("type name is required")
	}
	if rt.PricePerNight <= 0 {
		return Validationf("nightly price must be positive")
	}
	if rt.Capacity <= 0 {
		return Validationf("capacity must be positive")
	}
	if rt.MaxGuests < rt.Capacity {
		return Validationf("max guests cannot be below capacity")
	}
	if rt.ExtraBedAllowed && rt.ExtraBedPrice < 0 {
		return Validationf("extra bed price cannot be negative")
	}
	return nil
}
