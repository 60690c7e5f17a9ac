package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type RoomTypeController struct {
	Types *services.RoomTypeService
}

func NewRoomTypeController(svc *services.RoomTypeService) *RoomTypeController {
	return &RoomTypeController{Types: svc}
}

func (tc *RoomTypeController) CreateRoomType(c *gin.Context) {
	var rt models.RoomType
	if err := c.ShouldBindJSON(&rt); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := tc.Types.Create(rt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

func (tc *RoomTypeController) GetRoomTypes(c *gin.Context) {
	types, err := tc.Types.GetAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

func (tc *RoomTypeController) GetRoomTypeByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rt, err := tc.Types.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rt)
}

func (tc *RoomTypeController) UpdateRoomType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var rt models.RoomType
	if err := c.ShouldBindJSON(&rt); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	rt.ID = id
	if err := tc.Types.Update(rt); err != nil {
		respondServiceError(c, err)
		return
	}
	updated, err := tc.Types.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (tc *RoomTypeController) DeleteRoomType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := tc.Types.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
