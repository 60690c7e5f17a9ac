package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type createPairingPayload struct {
	BookingID uint `json:"bookingId"`
}

type attachPairingPayload struct {
	Payload map[string]interface{} `json:"payload" binding:"required"`
}

// PairingController exposes the ID-scan pairing sessions: the desk opens a
// session, the scanner device attaches the scanned fields, the desk claims
// them. Sessions expire on their own after the TTL.
type PairingController struct {
	Store *services.PairingStore
}

func NewPairingController(store *services.PairingStore) *PairingController {
	return &PairingController{Store: store}
}

func (pc *PairingController) CreateSession(c *gin.Context) {
	var payload createPairingPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	session := pc.Store.Create(payload.BookingID)
	utils.JSONSuccess(c, http.StatusCreated, session)
}

func (pc *PairingController) AttachPayload(c *gin.Context) {
	var payload attachPairingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := pc.Store.Attach(c.Param("id"), payload.Payload); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"attached": true})
}

func (pc *PairingController) ClaimSession(c *gin.Context) {
	session, ok := pc.Store.Claim(c.Param("id"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "pairing session not found or expired")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, session)
}
