package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type AvailabilityController struct {
	Availability *services.AvailabilityService
}

func NewAvailabilityController(svc *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Availability: svc}
}

func (ac *AvailabilityController) window(c *gin.Context) (services.DateRange, bool) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid or missing from date")
		return services.DateRange{}, false
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid or missing to date")
		return services.DateRange{}, false
	}
	if to.Before(from) {
		utils.JSONError(c, http.StatusBadRequest, "to date is before from date")
		return services.DateRange{}, false
	}
	return services.DateRange{From: from, To: to}, true
}

// Resolve lists every room with its visibleStatus for the requested range.
// Optional type_id narrows to one room type.
func (ac *AvailabilityController) Resolve(c *gin.Context) {
	window, ok := ac.window(c)
	if !ok {
		return
	}
	var typeID uint
	if raw := c.Query("type_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid type_id")
			return
		}
		typeID = uint(v)
	}

	rooms, err := ac.Availability.Resolve(window, typeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// ResolveByType returns the grouped per-type summary (total, available,
// rooms).
func (ac *AvailabilityController) ResolveByType(c *gin.Context) {
	window, ok := ac.window(c)
	if !ok {
		return
	}
	types, err := ac.Availability.ResolveByType(window)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}
