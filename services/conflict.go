package services

import (
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
)

// DateRange is an inclusive window at day granularity.
type DateRange struct {
	From time.Time
	To   time.Time
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Overlaps is inclusive on both ends: a same-day handover counts as a
// conflict, since turnover timing is not modeled below day resolution.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.From.After(o.To) && !r.To.Before(o.From)
}

// EffectiveWindow returns the occupancy window a room line actually binds:
// actual dates once both are set, expected dates otherwise. Lines with neither
// pair complete have no window and never conflict.
func EffectiveWindow(line models.RoomLine) (DateRange, bool) {
	if line.ActualCheckIn != nil && line.ActualCheckOut != nil {
		return DateRange{From: day(*line.ActualCheckIn), To: day(*line.ActualCheckOut)}, true
	}
	if line.ExpectedCheckIn != nil && line.ExpectedCheckOut != nil {
		return DateRange{From: day(*line.ExpectedCheckIn), To: day(*line.ExpectedCheckOut)}, true
	}
	return DateRange{}, false
}

// HasOverlap reports whether two room lines contend for the same nights. This
// predicate is the single source of truth shared by availability listing,
// booking creation and booking edits.
func HasOverlap(a, b models.RoomLine) bool {
	wa, okA := EffectiveWindow(a)
	wb, okB := EffectiveWindow(b)
	if !okA || !okB {
		return false
	}
	return wa.Overlaps(wb)
}

func windowLine(w DateRange) models.RoomLine {
	from, to := w.From, w.To
	return models.RoomLine{ExpectedCheckIn: &from, ExpectedCheckOut: &to}
}

// ConflictDetector answers occupancy questions against the reservation ledger.
type ConflictDetector struct {
	DB *gorm.DB
	// HoldTTL bounds how long a pending booking keeps blocking capacity.
	HoldTTL time.Duration
}

func NewConflictDetector(db *gorm.DB, holdTTL time.Duration) *ConflictDetector {
	if holdTTL <= 0 {
		holdTTL = 30 * time.Minute
	}
	return &ConflictDetector{DB: db, HoldTTL: holdTTL}
}

// liveLines loads every room line that can reserve capacity: lines of booked
// and checked-in bookings, plus pending bookings still inside the hold TTL.
// typeID narrows to one room type; excludeBookingID lets an edited booking
// skip itself.
func (d *ConflictDetector) liveLines(tx *gorm.DB, typeID uint, excludeBookingID uint) ([]models.RoomLine, error) {
	if tx == nil {
		tx = d.DB
	}
	now := time.Now()

	q := tx.Model(&models.RoomLine{}).
		Joins("JOIN bookings ON bookings.id = room_lines.booking_id AND bookings.deleted_at IS NULL").
		Where("bookings.status IN ? OR (bookings.status = ? AND bookings.created_at > ?)",
			[]string{models.BookingBooked, models.BookingCheckedIn},
			models.BookingPending, now.Add(-d.HoldTTL))
	if typeID != 0 {
		q = q.Where("room_lines.room_type_id = ?", typeID)
	}
	if excludeBookingID != 0 {
		q = q.Where("room_lines.booking_id <> ?", excludeBookingID)
	}

	var lines []models.RoomLine
	if err := q.Find(&lines).Error; err != nil {
		return nil, wrapDB(err, "room lines")
	}
	return lines, nil
}

// CountTypeConflicts counts live room lines of the given type whose effective
// window overlaps the requested range.
func (d *ConflictDetector) CountTypeConflicts(tx *gorm.DB, typeID uint, window DateRange, excludeBookingID uint) (int, error) {
	lines, err := d.liveLines(tx, typeID, excludeBookingID)
	if err != nil {
		return 0, err
	}
	return countOverlapping(lines, window), nil
}

func countOverlapping(lines []models.RoomLine, window DateRange) int {
	ref := windowLine(window)
	n := 0
	for _, line := range lines {
		if HasOverlap(line, ref) {
			n++
		}
	}
	return n
}

// RoomConflicted reports whether a specific physical room is already taken for
// the window by a line that carries it.
func (d *ConflictDetector) RoomConflicted(tx *gorm.DB, roomID uint, window DateRange, excludeBookingID uint) (bool, error) {
	lines, err := d.liveLines(tx, 0, excludeBookingID)
	if err != nil {
		return false, err
	}
	ref := windowLine(window)
	for _, line := range lines {
		if line.RoomID != nil && *line.RoomID == roomID && HasOverlap(line, ref) {
			return true, nil
		}
	}
	return false, nil
}
