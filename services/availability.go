package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
)

// Query-time room status for a requested date range. Distinct from the room's
// persistent status: visibleStatus answers "is this room free for those
// dates", and always overrides stale persistent state for forward-looking
// queries.
const (
	VisibleAvailable = "available"
	VisibleBooked    = "booked"
	VisibleOccupied  = "occupied"
)

const (
	CheckoutToday = "today"
	CheckoutPast  = "past"
)

type RoomAvailability struct {
	Room          models.Room `json:"room"`
	VisibleStatus string      `json:"visibleStatus"`
	// Checkout flags rooms whose current occupant is due out today or overdue.
	// Informational only; it never changes VisibleStatus.
	Checkout string `json:"checkout,omitempty"`
}

type TypeAvailability struct {
	RoomType  models.RoomType    `json:"roomType"`
	Total     int                `json:"total"`
	Available int                `json:"available"`
	Rooms     []RoomAvailability `json:"rooms"`
}

type AvailabilityService struct {
	DB       *gorm.DB
	Detector *ConflictDetector
}

func NewAvailabilityService(db *gorm.DB, detector *ConflictDetector) *AvailabilityService {
	return &AvailabilityService{DB: db, Detector: detector}
}

// Resolve lists every physical room (optionally one type) with its
// visibleStatus for the window.
func (s *AvailabilityService) Resolve(window DateRange, typeID uint) ([]RoomAvailability, error) {
	rooms, lines, err := s.load(typeID)
	if err != nil {
		return nil, err
	}
	return resolveAvailability(rooms, lines, window, time.Now()), nil
}

// ResolveByType groups the per-room view by room type. Types with zero
// physical rooms are absent from the result, not reported as empty.
func (s *AvailabilityService) ResolveByType(window DateRange) ([]TypeAvailability, error) {
	rooms, lines, err := s.load(0)
	if err != nil {
		return nil, err
	}
	perRoom := resolveAvailability(rooms, lines, window, time.Now())

	byType := map[uint]*TypeAvailability{}
	order := []uint{}
	for _, ra := range perRoom {
		ta, ok := byType[ra.Room.RoomTypeID]
		if !ok {
			ta = &TypeAvailability{RoomType: ra.Room.RoomType}
			byType[ra.Room.RoomTypeID] = ta
			order = append(order, ra.Room.RoomTypeID)
		}
		ta.Total++
		if ra.VisibleStatus == VisibleAvailable {
			ta.Available++
		}
		ta.Rooms = append(ta.Rooms, ra)
	}

	out := make([]TypeAvailability, 0, len(order))
	for _, id := range order {
		out = append(out, *byType[id])
	}
	return out, nil
}

// RemainingByType returns how many rooms of the type are still free for the
// window: physical count minus overlapping live lines.
func (s *AvailabilityService) RemainingByType(tx *gorm.DB, typeID uint, window DateRange, excludeBookingID uint) (int, error) {
	if tx == nil {
		tx = s.DB
	}
	var total int64
	if err := tx.Model(&models.Room{}).
		Where("room_type_id = ? AND status <> ?", typeID, models.RoomMaintenance).
		Count(&total).Error; err != nil {
		return 0, wrapDB(err, "rooms")
	}
	conflicts, err := s.Detector.CountTypeConflicts(tx, typeID, window, excludeBookingID)
	if err != nil {
		return 0, err
	}
	remaining := int(total) - conflicts
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *AvailabilityService) load(typeID uint) ([]models.Room, []models.RoomLine, error) {
	q := s.DB.Preload("RoomType").Order("room_number ASC")
	if typeID != 0 {
		q = q.Where("room_type_id = ?", typeID)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, nil, wrapDB(err, "rooms")
	}
	lines, err := s.Detector.liveLines(nil, typeID, 0)
	if err != nil {
		return nil, nil, err
	}
	return rooms, lines, nil
}

// resolveAvailability is the pure core of the resolver. Lines that already
// carry a physical room mark that room directly; type-only lines reserve the
// first free rooms of their type in room-number order, because which room they
// will occupy is not decided yet.
func resolveAvailability(rooms []models.Room, lines []models.RoomLine, window DateRange, now time.Time) []RoomAvailability {
	ref := windowLine(window)
	today := day(now)

	conflicted := map[uint]string{}
	typeReserved := map[uint]int{}
	checkoutHint := map[uint]string{}

	for _, line := range lines {
		// Checkout hints come from current occupancy, independent of the
		// queried window.
		if line.RoomID != nil && line.ActualCheckIn != nil && line.ActualCheckOut == nil && line.ExpectedCheckOut != nil {
			due := day(*line.ExpectedCheckOut)
			switch {
			case due.Equal(today):
				checkoutHint[*line.RoomID] = CheckoutToday
			case due.Before(today):
				checkoutHint[*line.RoomID] = CheckoutPast
			}
		}

		if !HasOverlap(line, ref) {
			continue
		}
		status := VisibleBooked
		if line.Status == models.LineCheckedIn {
			status = VisibleOccupied
		}
		if line.RoomID != nil {
			if conflicted[*line.RoomID] != VisibleOccupied {
				conflicted[*line.RoomID] = status
			}
		} else {
			typeReserved[line.RoomTypeID]++
		}
	}

	sorted := make([]models.Room, len(rooms))
	copy(sorted, rooms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RoomNumber < sorted[j].RoomNumber
	})

	out := make([]RoomAvailability, 0, len(sorted))
	for _, rm := range sorted {
		vs := VisibleAvailable
		switch {
		case conflicted[rm.ID] != "":
			vs = conflicted[rm.ID]
		case rm.Status == models.RoomMaintenance:
			// Maintenance rooms are never handed to type-level reservations.
			vs = VisibleOccupied
		case typeReserved[rm.RoomTypeID] > 0:
			typeReserved[rm.RoomTypeID]--
			vs = VisibleBooked
		}
		out = append(out, RoomAvailability{
			Room:          rm,
			VisibleStatus: vs,
			Checkout:      checkoutHint[rm.ID],
		})
	}
	return out
}
