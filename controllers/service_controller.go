package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type ServiceController struct {
	Catalog   *services.ServiceCatalog
	Inventory *services.InventoryService
}

func NewServiceController(catalog *services.ServiceCatalog, inventory *services.InventoryService) *ServiceController {
	return &ServiceController{Catalog: catalog, Inventory: inventory}
}

func (sc *ServiceController) CreateService(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := sc.Catalog.Create(svc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

func (sc *ServiceController) GetServices(c *gin.Context) {
	list, err := sc.Catalog.GetAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (sc *ServiceController) GetServiceByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	svc, err := sc.Catalog.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, svc)
}

func (sc *ServiceController) UpdateService(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	svc.ID = id
	if err := sc.Catalog.Update(svc); err != nil {
		respondServiceError(c, err)
		return
	}
	updated, err := sc.Catalog.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (sc *ServiceController) DeleteService(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := sc.Catalog.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

func (sc *ServiceController) GetInventoryItems(c *gin.Context) {
	items, err := sc.Inventory.ListItems()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}
