package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

// respondServiceError maps the service error taxonomy onto HTTP. Internal
// errors are logged with detail and surfaced opaque.
func respondServiceError(c *gin.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case services.KindNotFound:
			utils.JSONError(c, http.StatusNotFound, se.Message)
			return
		case services.KindValidation:
			utils.JSONError(c, http.StatusBadRequest, se.Message)
			return
		case services.KindCapacityConflict, services.KindInvalidTransition:
			utils.JSONError(c, http.StatusConflict, se.Message)
			return
		}
	}
	log.Printf("internal error: %v", err)
	utils.JSONError(c, http.StatusInternalServerError, "internal error")
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts a plain date or RFC3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
