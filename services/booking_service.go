package services

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-pms/models"
)

// BookingService owns the reservation lifecycle: create, check-in, check-out,
// cancel, edit, and the pending-hold sweep.
type BookingService struct {
	DB        *gorm.DB
	Detector  *ConflictDetector
	Payments  *PaymentService
	Inventory *InventoryService
	Notifier  Notifier
	Tasks     TaskCreator
	Events    Broadcaster

	// HoldTTL is how long a pending booking blocks capacity before the sweep
	// discards it.
	HoldTTL time.Duration
}

func NewBookingService(
	db *gorm.DB,
	detector *ConflictDetector,
	payments *PaymentService,
	inventory *InventoryService,
	notifier Notifier,
	tasks TaskCreator,
	events Broadcaster,
	holdTTL time.Duration,
) *BookingService {
	if holdTTL <= 0 {
		holdTTL = 30 * time.Minute
	}
	return &BookingService{
		DB:        db,
		Detector:  detector,
		Payments:  payments,
		Inventory: inventory,
		Notifier:  notifier,
		Tasks:     tasks,
		Events:    events,
		HoldTTL:   holdTTL,
	}
}

// ---------------------------
// Inputs
// ---------------------------

type GuestInput struct {
	FullName string `json:"fullName"`
	Type     string `json:"type"`
}

type ServiceInput struct {
	ServiceID uint `json:"serviceId"`
	Quantity  int  `json:"quantity"`
}

type RoomLineInput struct {
	RoomTypeID uint  `json:"roomTypeId"`
	RoomID     *uint `json:"roomId,omitempty"`

	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`

	Adults   int `json:"adults"`
	Children int `json:"children"`

	MainGuestName     string       `json:"mainGuestName"`
	MainGuestPhone    string       `json:"mainGuestPhone"`
	MainGuestIDNumber string       `json:"mainGuestIdNumber"`
	ExtraGuests       []GuestInput `json:"extraGuests,omitempty"`

	Services []ServiceInput `json:"services,omitempty"`
}

type CreateBookingInput struct {
	CustomerID uint `json:"customerId"`
	// Hold creates a pending booking that reserves capacity for the hold TTL
	// (online-payment flows); the sweep discards it if never confirmed.
	Hold bool   `json:"hold"`
	Note string `json:"note"`

	RoomLines []RoomLineInput `json:"roomLines"`
	// Booking-level services, not tied to any room (e.g. airport transfer).
	Services []ServiceInput `json:"services,omitempty"`
}

type RoomLineUpdate struct {
	LineID uint `json:"lineId"`

	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	RoomTypeID *uint      `json:"roomTypeId,omitempty"`
	RoomID     *uint      `json:"roomId,omitempty"`
	Adults     *int       `json:"adults,omitempty"`
	Children   *int       `json:"children,omitempty"`

	// Replaces the line's room-scoped services when present.
	Services *[]ServiceInput `json:"services,omitempty"`
}

type UpdateBookingInput struct {
	Note *string `json:"note,omitempty"`
	// Replaces the booking-level services when present.
	Services *[]ServiceInput  `json:"services,omitempty"`
	Lines    []RoomLineUpdate `json:"lines,omitempty"`
}

// checkTypeCapacity phrases the capacity error with the remaining count and
// type name so the caller can adjust the request.
func checkTypeCapacity(typeName string, remaining, requested int, window DateRange) error {
	if requested <= remaining {
		return nil
	}
	return CapacityConflictf("only %d %s room(s) remaining for %s - %s, %d requested",
		remaining, typeName,
		window.From.Format("2006-01-02"), window.To.Format("2006-01-02"),
		requested)
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}

// ---------------------------
// Create
// ---------------------------

// Create validates capacity per requested room type and writes the booking in
// one transaction. The conflict count and the insert are not serialized
// beyond that transaction: two near-simultaneous requests for the last room
// can both pass, which is the known optimistic check-then-write window.
func (s *BookingService) Create(input CreateBookingInput) (*models.Booking, error) {
	if len(input.RoomLines) == 0 {
		return nil, Validationf("at least one room line is required")
	}
	for i := range input.RoomLines {
		line := &input.RoomLines[i]
		if line.CheckIn.IsZero() || line.CheckOut.IsZero() {
			return nil, Validationf("room line %d is missing stay dates", i+1)
		}
		if line.CheckOut.Before(line.CheckIn) {
			return nil, Validationf("room line %d checks out before it checks in", i+1)
		}
		if line.RoomTypeID == 0 {
			return nil, Validationf("room line %d is missing a room type", i+1)
		}
		if line.Adults <= 0 {
			line.Adults = 1
		}
		if line.Children < 0 {
			line.Children = 0
		}
	}

	var customer models.Customer
	if err := s.DB.First(&customer, input.CustomerID).Error; err != nil {
		return nil, wrapDB(err, "customer")
	}

	status := models.BookingBooked
	lineStatus := models.LineBooked
	if input.Hold {
		status = models.BookingPending
		lineStatus = models.LinePending
	}

	var bookingID uint
	var txErr error
	for attempt := 0; attempt < 5; attempt++ {
		txErr = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.checkCapacity(tx, input.RoomLines, 0); err != nil {
				return err
			}

			code, err := nextBookingCode(tx, time.Now())
			if err != nil {
				return err
			}

			booking := models.Booking{
				Code:             code,
				CustomerID:       customer.ID,
				CustomerName:     customer.FullName,
				CustomerPhone:    customer.Phone,
				CustomerEmail:    customer.Email,
				CustomerIDNumber: customer.IDNumber,
				Status:           status,
				PaymentStatus:    models.PaymentStatusUnpaid,
				Note:             input.Note,
			}

			for _, in := range input.RoomLines {
				line, err := s.buildRoomLine(tx, in, lineStatus, 0)
				if err != nil {
					return err
				}
				booking.RoomLines = append(booking.RoomLines, line)
			}

			if err := tx.Create(&booking).Error; err != nil {
				return wrapDB(err, "booking")
			}

			for i, in := range input.RoomLines {
				lineID := booking.RoomLines[i].ID
				for _, svc := range in.Services {
					if err := s.createServiceLine(tx, booking.ID, &lineID, svc); err != nil {
						return err
					}
				}
			}
			for _, svc := range input.Services {
				if err := s.createServiceLine(tx, booking.ID, nil, svc); err != nil {
					return err
				}
			}

			if _, err := s.repriceTx(tx, booking.ID); err != nil {
				return err
			}

			bookingID = booking.ID
			return nil
		})
		if txErr == nil {
			break
		}
		if isDuplicateKey(txErr) {
			log.Printf("booking code collision (attempt %d), retrying", attempt+1)
			continue
		}
		return nil, txErr
	}
	if txErr != nil {
		if isDuplicateKey(txErr) {
			return nil, &Error{Kind: KindInternal, Message: "could not allocate booking code", Err: txErr}
		}
		return nil, txErr
	}

	booking, err := s.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if !input.Hold {
		s.downstream("send booking confirmation", func() error {
			return s.Notifier.SendBookingConfirmation(*booking)
		})
	}
	return booking, nil
}

// checkCapacity validates each requested line's window separately: the
// requested count for a window is the number of same-type lines in this
// request that overlap it, never a merged union. Two lines over disjoint
// windows each only claim one room for their own window.
func (s *BookingService) checkCapacity(tx *gorm.DB, lines []RoomLineInput, excludeBookingID uint) error {
	byType := map[uint][]models.RoomLine{}
	for _, in := range lines {
		byType[in.RoomTypeID] = append(byType[in.RoomTypeID],
			windowLine(DateRange{From: day(in.CheckIn), To: day(in.CheckOut)}))
	}

	for typeID, group := range byType {
		var rt models.RoomType
		if err := tx.First(&rt, typeID).Error; err != nil {
			return wrapDB(err, "room type")
		}
		for _, ref := range group {
			w, ok := EffectiveWindow(ref)
			if !ok {
				continue
			}
			remaining, err := s.remainingByType(tx, typeID, w, excludeBookingID)
			if err != nil {
				return err
			}
			if err := checkTypeCapacity(rt.TypeName, remaining, countOverlapping(group, w), w); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *BookingService) remainingByType(tx *gorm.DB, typeID uint, window DateRange, excludeBookingID uint) (int, error) {
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

func (s *BookingService) buildRoomLine(tx *gorm.DB, in RoomLineInput, status string, excludeBookingID uint) (models.RoomLine, error) {
	var rt models.RoomType
	if err := tx.First(&rt, in.RoomTypeID).Error; err != nil {
		return models.RoomLine{}, wrapDB(err, "room type")
	}
	if in.Adults+in.Children > rt.MaxGuests {
		return models.RoomLine{}, Validationf("%s takes at most %d guests", rt.TypeName, rt.MaxGuests)
	}

	price, extraBed := ResolveNightlyPrice(rt, in.Adults)
	window := DateRange{From: day(in.CheckIn), To: day(in.CheckOut)}

	line := models.RoomLine{
		RoomTypeID:        rt.ID,
		Status:            status,
		ExpectedCheckIn:   &window.From,
		ExpectedCheckOut:  &window.To,
		Adults:            in.Adults,
		Children:          in.Children,
		ExtraBed:          extraBed,
		NightlyPrice:      price,
		MainGuestName:     in.MainGuestName,
		MainGuestPhone:    in.MainGuestPhone,
		MainGuestIDNumber: in.MainGuestIDNumber,
	}

	if len(in.ExtraGuests) > 0 {
		raw, err := json.Marshal(in.ExtraGuests)
		if err == nil {
			line.ExtraGuests = datatypes.JSON(raw)
		}
	}

	if in.RoomID != nil {
		var room models.Room
		if err := tx.First(&room, *in.RoomID).Error; err != nil {
			return models.RoomLine{}, wrapDB(err, "room")
		}
		if room.RoomTypeID != rt.ID {
			return models.RoomLine{}, Validationf("room %s is not a %s", room.RoomNumber, rt.TypeName)
		}
		taken, err := s.Detector.RoomConflicted(tx, room.ID, window, excludeBookingID)
		if err != nil {
			return models.RoomLine{}, err
		}
		if taken {
			return models.RoomLine{}, CapacityConflictf("room %s is already reserved for %s - %s",
				room.RoomNumber, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
		}
		line.RoomID = &room.ID
	}
	return line, nil
}

func (s *BookingService) createServiceLine(tx *gorm.DB, bookingID uint, roomLineID *uint, in ServiceInput) error {
	var svc models.Service
	if err := tx.First(&svc, in.ServiceID).Error; err != nil {
		return wrapDB(err, "service")
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	line := models.ServiceLine{
		BookingID:  bookingID,
		RoomLineID: roomLineID,
		ServiceID:  svc.ID,
		Name:       svc.Name,
		Category:   svc.Category,
		UnitPrice:  svc.Price,
		Quantity:   qty,
	}
	if err := tx.Create(&line).Error; err != nil {
		return wrapDB(err, "service line")
	}
	return nil
}

// repriceTx recomputes the booking total from the stored aggregate inside the
// transaction and persists it.
func (s *BookingService) repriceTx(tx *gorm.DB, bookingID uint) (float64, error) {
	var booking models.Booking
	err := tx.
		Preload("RoomLines").
		Preload("RoomLines.ServiceLines").
		Preload("ServiceLines").
		First(&booking, bookingID).Error
	if err != nil {
		return 0, wrapDB(err, "booking")
	}
	total := PriceBooking(booking).Total
	if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
		Update("total_price", total).Error; err != nil {
		return 0, wrapDB(err, "booking")
	}
	return total, nil
}

// ---------------------------
// Reads
// ---------------------------

func (s *BookingService) GetBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.
		Preload("Customer").
		Preload("RoomLines").
		Preload("RoomLines.RoomType").
		Preload("RoomLines.Room").
		Preload("RoomLines.ServiceLines.Service").
		Preload("ServiceLines.Service").
		Preload("Payments").
		First(&booking, id).Error
	if err != nil {
		return nil, wrapDB(err, "booking")
	}
	if booking.RoomLines == nil {
		booking.RoomLines = []models.RoomLine{}
	}
	return &booking, nil
}

func (s *BookingService) GetByCode(code string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Where("code = ?", code).First(&booking).Error; err != nil {
		return nil, wrapDB(err, "booking")
	}
	return s.GetBooking(booking.ID)
}

func (s *BookingService) List(status string) ([]models.Booking, error) {
	q := s.DB.
		Preload("RoomLines").
		Preload("RoomLines.RoomType").
		Preload("RoomLines.Room").
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Booking
	if err := q.Find(&list).Error; err != nil {
		return nil, wrapDB(err, "bookings")
	}
	for i := range list {
		if list[i].RoomLines == nil {
			list[i].RoomLines = []models.RoomLine{}
		}
	}
	return list, nil
}

// ---------------------------
// Lifecycle transitions
// ---------------------------

// CheckIn moves a booked booking to checked_in: assigns a free room to every
// line still missing one, stamps actual check-in and snapshots, and flips the
// rooms to occupied.
func (s *BookingService) CheckIn(bookingID uint) (*models.Booking, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return wrapDB(err, "booking")
		}
		if booking.Status != models.BookingBooked {
			return InvalidTransitionf("check-in requires status %q, booking %s is %q",
				models.BookingBooked, booking.Code, booking.Status)
		}

		var lines []models.RoomLine
		if err := tx.Where("booking_id = ?", bookingID).Find(&lines).Error; err != nil {
			return wrapDB(err, "room lines")
		}

		now := time.Now()
		taken := map[uint]bool{}
		for i := range lines {
			line := &lines[i]
			window, ok := EffectiveWindow(*line)
			if !ok {
				window = DateRange{From: day(now), To: day(now)}
			}

			if line.RoomID == nil {
				roomID, err := s.pickFreeRoom(tx, line.RoomTypeID, window, bookingID, taken)
				if err != nil {
					return err
				}
				line.RoomID = &roomID
			}
			taken[*line.RoomID] = true

			var room models.Room
			if err := tx.Preload("RoomType").First(&room, *line.RoomID).Error; err != nil {
				return wrapDB(err, "room")
			}

			if err := tx.Model(&models.RoomLine{}).Where("id = ?", line.ID).
				Updates(map[string]interface{}{
					"room_id":         room.ID,
					"status":          models.LineCheckedIn,
					"actual_check_in": now,
					"room_number":     room.RoomNumber,
					"type_name":       room.RoomType.TypeName,
				}).Error; err != nil {
				return wrapDB(err, "room line")
			}
			if err := tx.Model(&models.Room{}).Where("id = ?", room.ID).
				Update("status", models.RoomOccupied).Error; err != nil {
				return wrapDB(err, "room")
			}
		}

		if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
			Update("status", models.BookingCheckedIn).Error; err != nil {
			return wrapDB(err, "booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.downstream("broadcast task refresh", func() error {
		return s.Events.Publish(EventTaskRefresh, map[string]interface{}{"bookingId": bookingID})
	})
	return s.GetBooking(bookingID)
}

// pickFreeRoom returns the first room of the type, in room-number order, that
// is neither under maintenance, conflicted for the window, nor already chosen
// in this pass.
func (s *BookingService) pickFreeRoom(tx *gorm.DB, typeID uint, window DateRange, excludeBookingID uint, taken map[uint]bool) (uint, error) {
	var rooms []models.Room
	if err := tx.Where("room_type_id = ? AND status <> ?", typeID, models.RoomMaintenance).
		Order("room_number ASC").Find(&rooms).Error; err != nil {
		return 0, wrapDB(err, "rooms")
	}

	lines, err := s.Detector.liveLines(tx, 0, excludeBookingID)
	if err != nil {
		return 0, err
	}
	ref := windowLine(window)
	conflicted := map[uint]bool{}
	for _, line := range lines {
		if line.RoomID != nil && HasOverlap(line, ref) {
			conflicted[*line.RoomID] = true
		}
	}

	for _, room := range rooms {
		if taken[room.ID] || conflicted[room.ID] {
			continue
		}
		return room.ID, nil
	}
	return 0, CapacityConflictf("no free room of type %d for %s - %s",
		typeID, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
}

// AssignRoom explicitly pins a physical room onto a line before check-in.
func (s *BookingService) AssignRoom(bookingID, lineID, roomID uint) (*models.Booking, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return wrapDB(err, "booking")
		}
		if booking.Status == models.BookingCompleted || booking.Status == models.BookingCancelled {
			return InvalidTransitionf("booking %s is %s", booking.Code, booking.Status)
		}

		var line models.RoomLine
		if err := tx.Where("id = ? AND booking_id = ?", lineID, bookingID).
			First(&line).Error; err != nil {
			return wrapDB(err, "room line")
		}
		if line.Status == models.LineCompleted {
			return InvalidTransitionf("room line already completed")
		}

		var room models.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			return wrapDB(err, "room")
		}
		if room.RoomTypeID != line.RoomTypeID {
			return Validationf("room %s does not match the line's room type", room.RoomNumber)
		}

		window, ok := EffectiveWindow(line)
		if ok {
			conflictedRoom, err := s.Detector.RoomConflicted(tx, roomID, window, bookingID)
			if err != nil {
				return err
			}
			if conflictedRoom {
				return CapacityConflictf("room %s is already reserved for %s - %s",
					room.RoomNumber, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
			}
		}

		return wrapErr(tx.Model(&models.RoomLine{}).Where("id = ?", lineID).
			Update("room_id", roomID).Error, "room line")
	})
	if err != nil {
		return nil, err
	}
	return s.GetBooking(bookingID)
}

// CheckOut completes a caller-supplied subset of room lines (all remaining
// ones when lineIDs is empty). The booking itself completes only when its
// last line does. Receipt, cleaning tasks, minibar deductions and broadcasts
// happen after the transaction commits and never roll it back.
func (s *BookingService) CheckOut(bookingID uint, lineIDs []uint) (*models.Booking, Receipt, error) {
	type consumption struct {
		roomLineID uint
		serviceID  uint
		itemID     uint
		qty        int
	}
	type cleanedRoom struct {
		id     uint
		number string
	}

	var cleaned []cleanedRoom
	var consumed []consumption
	var bookingCode string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return wrapDB(err, "booking")
		}
		if booking.Status != models.BookingCheckedIn {
			return InvalidTransitionf("check-out requires status %q, booking %s is %q",
				models.BookingCheckedIn, booking.Code, booking.Status)
		}
		bookingCode = booking.Code

		var lines []models.RoomLine
		if err := tx.Preload("ServiceLines.Service").
			Where("booking_id = ?", bookingID).Find(&lines).Error; err != nil {
			return wrapDB(err, "room lines")
		}

		picks, remaining, err := pickCheckOutLines(lines, lineIDs)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, line := range picks {
			if err := tx.Model(&models.RoomLine{}).Where("id = ?", line.ID).
				Updates(map[string]interface{}{
					"status":           models.LineCompleted,
					"actual_check_out": now,
				}).Error; err != nil {
				return wrapDB(err, "room line")
			}

			if line.RoomID != nil {
				if err := tx.Model(&models.Room{}).Where("id = ?", *line.RoomID).
					Updates(map[string]interface{}{
						"status":              models.RoomAvailable,
						"housekeeping_status": models.HousekeepingCleaning,
					}).Error; err != nil {
					return wrapDB(err, "room")
				}
				cleaned = append(cleaned, cleanedRoom{id: *line.RoomID, number: line.RoomNumber})
			}

			for _, sl := range line.ServiceLines {
				if sl.Category == models.ServiceMinibar && sl.Service.InventoryItemID != nil {
					consumed = append(consumed, consumption{
						roomLineID: line.ID,
						serviceID:  sl.ServiceID,
						itemID:     *sl.Service.InventoryItemID,
						qty:        sl.Quantity,
					})
				}
			}
		}

		if remaining == 0 {
			if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
				Update("status", models.BookingCompleted).Error; err != nil {
				return wrapDB(err, "booking")
			}
		}

		if _, err := s.repriceTx(tx, bookingID); err != nil {
			return err
		}
		_, err = s.Payments.RecomputePaymentStatus(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, Receipt{}, err
	}

	for _, room := range cleaned {
		room := room
		s.downstream("create cleaning task", func() error {
			return s.Tasks.CreateCleaningTask(room.id, room.number, bookingCode)
		})
		s.downstream("broadcast housekeeping update", func() error {
			return s.Events.Publish(EventHousekeepingUpdated, map[string]interface{}{
				"roomId": room.id, "housekeepingStatus": models.HousekeepingCleaning,
			})
		})
	}
	for _, cons := range consumed {
		cons := cons
		s.downstream("deduct minibar inventory", func() error {
			return s.Inventory.Consume(bookingID, cons.roomLineID, cons.serviceID, cons.itemID, cons.qty)
		})
	}
	s.downstream("broadcast task refresh", func() error {
		return s.Events.Publish(EventTaskRefresh, map[string]interface{}{"bookingId": bookingID})
	})
	s.downstream("broadcast checkout", func() error {
		return s.Events.Publish(EventCheckoutCompleted, map[string]interface{}{"bookingCode": bookingCode})
	})

	booking, err := s.GetBooking(bookingID)
	if err != nil {
		return nil, Receipt{}, err
	}
	paid, err := s.Payments.PaidSum(nil, bookingID)
	if err != nil {
		return nil, Receipt{}, err
	}
	receipt := BuildReceipt(*booking, paid, time.Now())
	s.downstream("send receipt", func() error {
		return s.Notifier.SendReceipt(*booking, receipt)
	})
	return booking, receipt, nil
}

// pickCheckOutLines resolves which lines this pass completes: the explicit
// ids, or every line still checked in when none are given. remaining is the
// count of live lines left after the pass.
func pickCheckOutLines(lines []models.RoomLine, lineIDs []uint) ([]*models.RoomLine, int, error) {
	selected := map[uint]bool{}
	for _, id := range lineIDs {
		selected[id] = true
	}
	var picks []*models.RoomLine
	remaining := 0
	found := len(lineIDs) == 0
	for i := range lines {
		line := &lines[i]
		pick := len(lineIDs) == 0 && line.Status == models.LineCheckedIn
		if selected[line.ID] {
			pick = true
			found = true
			if line.Status != models.LineCheckedIn {
				return nil, 0, InvalidTransitionf("room line %d is %s, not checked in", line.ID, line.Status)
			}
		}
		if !pick {
			if line.Status != models.LineCompleted {
				remaining++
			}
			continue
		}
		picks = append(picks, line)
	}
	if !found {
		return nil, 0, NotFoundf("no matching room lines to check out")
	}
	return picks, remaining, nil
}

// Cancel is allowed only from pending or booked, releases any assigned rooms
// and refunds settled payments. Irreversible.
func (s *BookingService) Cancel(bookingID uint) (*models.Booking, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return wrapDB(err, "booking")
		}
		if booking.Status != models.BookingPending && booking.Status != models.BookingBooked {
			return InvalidTransitionf("booking %s is %s and can no longer be cancelled",
				booking.Code, booking.Status)
		}

		var lines []models.RoomLine
		if err := tx.Where("booking_id = ?", bookingID).Find(&lines).Error; err != nil {
			return wrapDB(err, "room lines")
		}
		for _, line := range lines {
			if line.RoomID == nil {
				continue
			}
			if err := tx.Model(&models.Room{}).
				Where("id = ? AND status = ?", *line.RoomID, models.RoomOccupied).
				Update("status", models.RoomAvailable).Error; err != nil {
				return wrapDB(err, "room")
			}
		}

		if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
			Update("status", models.BookingCancelled).Error; err != nil {
			return wrapDB(err, "booking")
		}

		paid, err := s.Payments.PaidSum(tx, bookingID)
		if err != nil {
			return err
		}
		if paid > 0 {
			return s.Payments.RefundBooking(tx, bookingID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.downstream("broadcast task refresh", func() error {
		return s.Events.Publish(EventTaskRefresh, map[string]interface{}{"bookingId": bookingID})
	})
	return s.GetBooking(bookingID)
}

// Confirm promotes a pending hold to booked, once its payment settles or via
// the explicit confirm endpoint. The capacity check re-runs with the
// booking's own lines excluded from the ledger: a hold that sat past its TTL
// can still confirm as long as nobody claimed the rooms meanwhile. Confirming
// an already-booked booking is a no-op.
func (s *BookingService) Confirm(bookingID uint) (*models.Booking, error) {
	alreadyBooked := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return wrapDB(err, "booking")
		}
		if booking.Status == models.BookingBooked {
			alreadyBooked = true
			return nil
		}
		if booking.Status != models.BookingPending {
			return InvalidTransitionf("confirm requires status %q, booking %s is %q",
				models.BookingPending, booking.Code, booking.Status)
		}

		var lines []models.RoomLine
		if err := tx.Where("booking_id = ?", bookingID).Find(&lines).Error; err != nil {
			return wrapDB(err, "room lines")
		}

		byType := map[uint][]models.RoomLine{}
		for _, line := range lines {
			byType[line.RoomTypeID] = append(byType[line.RoomTypeID], line)
		}
		for typeID, group := range byType {
			var rt models.RoomType
			if err := tx.First(&rt, typeID).Error; err != nil {
				return wrapDB(err, "room type")
			}
			for _, line := range group {
				w, ok := EffectiveWindow(line)
				if !ok {
					continue
				}
				remaining, err := s.remainingByType(tx, typeID, w, bookingID)
				if err != nil {
					return err
				}
				if err := checkTypeCapacity(rt.TypeName, remaining, countOverlapping(group, w), w); err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&models.RoomLine{}).
			Where("booking_id = ? AND status = ?", bookingID, models.LinePending).
			Update("status", models.LineBooked).Error; err != nil {
			return wrapDB(err, "room lines")
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
			Update("status", models.BookingBooked).Error; err != nil {
			return wrapDB(err, "booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking, err := s.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if !alreadyBooked {
		s.downstream("send booking confirmation", func() error {
			return s.Notifier.SendBookingConfirmation(*booking)
		})
	}
	return booking, nil
}

// ---------------------------
// Edits
// ---------------------------

// Update edits dates, room types, guests and services while the booking is
// still live. Every edit that touches dates or room type re-runs the conflict
// check with the booking's own id excluded.
func (s *BookingService) Update(bookingID uint, input UpdateBookingInput) (*models.Booking, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return wrapDB(err, "booking")
		}
		if booking.Status == models.BookingCompleted || booking.Status == models.BookingCancelled {
			return InvalidTransitionf("booking %s is %s and can no longer be edited",
				booking.Code, booking.Status)
		}

		for _, lu := range input.Lines {
			if err := s.applyLineUpdate(tx, &booking, lu); err != nil {
				return err
			}
		}

		if input.Services != nil {
			if err := tx.Where("booking_id = ? AND room_line_id IS NULL", bookingID).
				Delete(&models.ServiceLine{}).Error; err != nil {
				return wrapDB(err, "service lines")
			}
			for _, svc := range *input.Services {
				if err := s.createServiceLine(tx, bookingID, nil, svc); err != nil {
					return err
				}
			}
		}

		if input.Note != nil {
			if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
				Update("note", *input.Note).Error; err != nil {
				return wrapDB(err, "booking")
			}
		}

		if _, err := s.repriceTx(tx, bookingID); err != nil {
			return err
		}
		_, err := s.Payments.RecomputePaymentStatus(tx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetBooking(bookingID)
}

func (s *BookingService) applyLineUpdate(tx *gorm.DB, booking *models.Booking, lu RoomLineUpdate) error {
	var line models.RoomLine
	if err := tx.Where("id = ? AND booking_id = ?", lu.LineID, booking.ID).
		First(&line).Error; err != nil {
		return wrapDB(err, "room line")
	}
	if line.Status == models.LineCompleted {
		return InvalidTransitionf("room line %d is already completed", line.ID)
	}

	updates := map[string]interface{}{}

	checkIn := line.ExpectedCheckIn
	checkOut := line.ExpectedCheckOut
	datesChanged := false
	if lu.CheckIn != nil {
		d := day(*lu.CheckIn)
		checkIn = &d
		updates["expected_check_in"] = d
		datesChanged = true
	}
	if lu.CheckOut != nil {
		d := day(*lu.CheckOut)
		checkOut = &d
		updates["expected_check_out"] = d
		datesChanged = true
	}
	if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
		return Validationf("room line %d checks out before it checks in", line.ID)
	}

	typeID := line.RoomTypeID
	typeChanged := false
	if lu.RoomTypeID != nil && *lu.RoomTypeID != line.RoomTypeID {
		typeID = *lu.RoomTypeID
		typeChanged = true
		updates["room_type_id"] = typeID
		// The old room no longer matches the new type.
		updates["room_id"] = nil
	}

	adults := line.Adults
	if lu.Adults != nil {
		if *lu.Adults <= 0 {
			return Validationf("adults must be positive")
		}
		adults = *lu.Adults
		updates["adults"] = adults
	}
	if lu.Children != nil {
		if *lu.Children < 0 {
			return Validationf("children cannot be negative")
		}
		updates["children"] = *lu.Children
	}

	// Re-freeze the nightly price whenever the inputs it depends on move.
	if typeChanged || lu.Adults != nil {
		var rt models.RoomType
		if err := tx.First(&rt, typeID).Error; err != nil {
			return wrapDB(err, "room type")
		}
		children := line.Children
		if lu.Children != nil {
			children = *lu.Children
		}
		if adults+children > rt.MaxGuests {
			return Validationf("%s takes at most %d guests", rt.TypeName, rt.MaxGuests)
		}
		price, extraBed := ResolveNightlyPrice(rt, adults)
		updates["nightly_price"] = price
		updates["extra_bed"] = extraBed
	}

	if (datesChanged || typeChanged) && checkIn != nil && checkOut != nil {
		window := DateRange{From: day(*checkIn), To: day(*checkOut)}
		remaining, err := s.remainingByType(tx, typeID, window, booking.ID)
		if err != nil {
			return err
		}
		// Sibling lines of the same booking contend for the same pool but are
		// excluded from the ledger count above.
		var siblings []models.RoomLine
		if err := tx.Where("booking_id = ? AND id <> ? AND room_type_id = ?",
			booking.ID, line.ID, typeID).Find(&siblings).Error; err != nil {
			return wrapDB(err, "room lines")
		}
		remaining -= countOverlapping(siblings, window)

		var rt models.RoomType
		if err := tx.First(&rt, typeID).Error; err != nil {
			return wrapDB(err, "room type")
		}
		if err := checkTypeCapacity(rt.TypeName, remaining, 1, window); err != nil {
			return err
		}
	}

	if lu.RoomID != nil {
		var room models.Room
		if err := tx.First(&room, *lu.RoomID).Error; err != nil {
			return wrapDB(err, "room")
		}
		if room.RoomTypeID != typeID {
			return Validationf("room %s does not match the line's room type", room.RoomNumber)
		}
		if checkIn != nil && checkOut != nil {
			window := DateRange{From: day(*checkIn), To: day(*checkOut)}
			taken, err := s.Detector.RoomConflicted(tx, room.ID, window, booking.ID)
			if err != nil {
				return err
			}
			if taken {
				return CapacityConflictf("room %s is already reserved for %s - %s",
					room.RoomNumber, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
			}
		}
		updates["room_id"] = room.ID
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.RoomLine{}).Where("id = ?", line.ID).
			Updates(updates).Error; err != nil {
			return wrapDB(err, "room line")
		}
	}

	if lu.Services != nil {
		if err := tx.Where("room_line_id = ?", line.ID).
			Delete(&models.ServiceLine{}).Error; err != nil {
			return wrapDB(err, "service lines")
		}
		lineID := line.ID
		for _, svc := range *lu.Services {
			if err := s.createServiceLine(tx, booking.ID, &lineID, svc); err != nil {
				return err
			}
		}
	}
	return nil
}

// ---------------------------
// Pending-hold sweep
// ---------------------------

// SweepExpiredHolds deletes pending bookings older than the hold TTL together
// with their lines, releasing their implicit capacity holds. Runs on a timer
// and once at startup.
func (s *BookingService) SweepExpiredHolds() (int, error) {
	cutoff := time.Now().Add(-s.HoldTTL)

	var ids []uint
	if err := s.DB.Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", models.BookingPending, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, wrapDB(err, "bookings")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	swept := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-filter under lock: a hold confirmed between the scan and this
		// transaction must survive.
		var expired []uint
		if err := tx.Model(&models.Booking{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND status = ? AND created_at < ?", ids, models.BookingPending, cutoff).
			Pluck("id", &expired).Error; err != nil {
			return wrapDB(err, "bookings")
		}
		if len(expired) == 0 {
			return nil
		}
		if err := tx.Where("booking_id IN ?", expired).Delete(&models.ServiceLine{}).Error; err != nil {
			return wrapDB(err, "service lines")
		}
		if err := tx.Where("booking_id IN ?", expired).Delete(&models.RoomLine{}).Error; err != nil {
			return wrapDB(err, "room lines")
		}
		if err := tx.Where("id IN ?", expired).Delete(&models.Booking{}).Error; err != nil {
			return wrapDB(err, "bookings")
		}
		swept = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		log.Printf("hold sweep: discarded %d expired pending booking(s)", swept)
	}
	return swept, nil
}

// BuildReceiptFor assembles the receipt for a booking outside of checkout
// (receipt download endpoint).
func (s *BookingService) BuildReceiptFor(bookingID uint) (Receipt, error) {
	booking, err := s.GetBooking(bookingID)
	if err != nil {
		return Receipt{}, err
	}
	paid, err := s.Payments.PaidSum(nil, bookingID)
	if err != nil {
		return Receipt{}, err
	}
	return BuildReceipt(*booking, paid, time.Now()), nil
}

// downstream runs a collaborator call under the partial-failure policy:
// failures are logged and swallowed.
func (s *BookingService) downstream(op string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("warning: %s failed: %v", op, err)
	}
}

func wrapErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	return wrapDB(err, entity)
}
