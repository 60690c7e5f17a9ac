package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
)

// Booking codes look like BK-0126-00042: a month-year bucket plus a sequence
// that restarts every calendar month. The sequence comes from "max existing
// plus one"; the unique index on code catches the race between two concurrent
// creations and the caller retries.
const bookingCodePrefix = "BK"

func monthCode(t time.Time) string {
	return t.Format("0106")
}

func formatBookingCode(month string, seq int) string {
	return fmt.Sprintf("%s-%s-%05d", bookingCodePrefix, month, seq)
}

// nextSequence parses the trailing sequence out of the highest existing code
// for the month. An empty or malformed last code starts the month at 1.
func nextSequence(lastCode, month string) int {
	prefix := bookingCodePrefix + "-" + month + "-"
	if !strings.HasPrefix(lastCode, prefix) {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(lastCode, prefix))
	if err != nil || n < 0 {
		return 1
	}
	return n + 1
}

func nextBookingCode(tx *gorm.DB, now time.Time) (string, error) {
	month := monthCode(now)
	prefix := bookingCodePrefix + "-" + month + "-"

	var codes []string
	err := tx.Model(&models.Booking{}).Unscoped().
		Where("code LIKE ?", prefix+"%").
		Order("code DESC").
		Limit(1).
		Pluck("code", &codes).Error
	if err != nil {
		return "", wrapDB(err, "booking codes")
	}

	last := ""
	if len(codes) > 0 {
		last = codes[0]
	}
	return formatBookingCode(month, nextSequence(last, month)), nil
}
