package services

import (
	"gorm.io/gorm"

	"hotel-pms/models"
)

type CustomerService struct {
	DB *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{DB: db}
}

func (s *CustomerService) Create(c models.Customer) (models.Customer, error) {
	if c.FullName == "" {
		return c, Validationf("customer name is required")
	}
	if err := s.DB.Create(&c).Error; err != nil {
		return c, wrapDB(err, "customer")
	}
	return c, nil
}

func (s *CustomerService) GetAll() ([]models.Customer, error) {
	var list []models.Customer
	if err := s.DB.Order("full_name ASC").Find(&list).Error; err != nil {
		return nil, wrapDB(err, "customers")
	}
	return list, nil
}

func (s *CustomerService) GetByID(id uint) (models.Customer, error) {
	var c models.Customer
	if err := s.DB.First(&c, id).Error; err != nil {
		return c, wrapDB(err, "customer")
	}
	return c, nil
}

func (s *CustomerService) Update(c models.Customer) error {
	if err := s.DB.Model(&models.Customer{}).Where("id = ?", c.ID).Updates(c).Error; err != nil {
		return wrapDB(err, "customer")
	}
	return nil
}

// Delete soft-deletes; bookings keep their denormalized snapshot.
func (s *CustomerService) Delete(id uint) error {
	if err := s.DB.Delete(&models.Customer{}, id).Error; err != nil {
		return wrapDB(err, "customer")
	}
	return nil
}
