package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type roomStatePayload struct {
	Status             *string `json:"status"`
	HousekeepingStatus *string `json:"housekeepingStatus"`
	DoNotDisturb       *bool   `json:"doNotDisturb"`
}

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{Rooms: svc}
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := rc.Rooms.Create(room)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.Rooms.GetAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (rc *RoomController) GetRoomByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	room, err := rc.Rooms.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	room.ID = id
	if err := rc.Rooms.Update(room); err != nil {
		respondServiceError(c, err)
		return
	}
	updated, err := rc.Rooms.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

// UpdateRoomState patches status / housekeeping / do-not-disturb and
// broadcasts the change for the housekeeping client.
func (rc *RoomController) UpdateRoomState(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload roomStatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	room, err := rc.Rooms.UpdateState(id, payload.Status, payload.HousekeepingStatus, payload.DoNotDisturb)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Rooms.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}
