package services

import (
	"gorm.io/gorm"

	"hotel-pms/models"
)

// ServiceCatalog manages the sellable add-ons.
type ServiceCatalog struct {
	DB *gorm.DB
}

func NewServiceCatalog(db *gorm.DB) *ServiceCatalog {
	return &ServiceCatalog{DB: db}
}

func validCategory(c models.ServiceCategory) bool {
	switch c {
	case models.ServicePerUnit, models.ServicePerDuration, models.ServicePerPerson,
		models.ServiceFixed, models.ServiceTransportation, models.ServiceMinibar:
		return true
	}
	return false
}

func (s *ServiceCatalog) Create(svc models.Service) (models.Service, error) {
	if svc.Name == "" {
		return svc, Validationf("service name is required")
	}
	if svc.Price <= 0 {
		return svc, Validationf("service price must be positive")
	}
	if !validCategory(svc.Category) {
		return svc, Validationf("unknown pricing category %q", svc.Category)
	}
	if svc.Category == models.ServiceMinibar && svc.InventoryItemID == nil {
		return svc, Validationf("minibar services must link an inventory item")
	}
	if err := s.DB.Create(&svc).Error; err != nil {
		return svc, wrapDB(err, "service")
	}
	return svc, nil
}

func (s *ServiceCatalog) GetAll() ([]models.Service, error) {
	var list []models.Service
	if err := s.DB.Order("name ASC").Find(&list).Error; err != nil {
		return nil, wrapDB(err, "services")
	}
	return list, nil
}

func (s *ServiceCatalog) GetByID(id uint) (models.Service, error) {
	var svc models.Service
	if err := s.DB.First(&svc, id).Error; err != nil {
		return svc, wrapDB(err, "service")
	}
	return svc, nil
}

// Update edits the catalog; booking service lines keep their price snapshots.
func (s *ServiceCatalog) Update(svc models.Service) error {
	if svc.Category != "" && !validCategory(svc.Category) {
		return Validationf("unknown pricing category %q", svc.Category)
	}
	if err := s.DB.Model(&models.Service{}).Where("id = ?", svc.ID).Updates(svc).Error; err != nil {
		return wrapDB(err, "service")
	}
	return nil
}

func (s *ServiceCatalog) Delete(id uint) error {
	if err := s.DB.Delete(&models.Service{}, id).Error; err != nil {
		return wrapDB(err, "service")
	}
	return nil
}
