package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type CustomerController struct {
	Customers *services.CustomerService
}

func NewCustomerController(svc *services.CustomerService) *CustomerController {
	return &CustomerController{Customers: svc}
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := cc.Customers.Create(customer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

func (cc *CustomerController) GetCustomers(c *gin.Context) {
	list, err := cc.Customers.GetAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	customer, err := cc.Customers.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, customer)
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	customer.ID = id
	if err := cc.Customers.Update(customer); err != nil {
		respondServiceError(c, err)
		return
	}
	updated, err := cc.Customers.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.Customers.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
