package services

import (
	"gorm.io/gorm"

	"hotel-pms/models"
)

type RoomService struct {
	DB     *gorm.DB
	Events Broadcaster
}

func NewRoomService(db *gorm.DB, events Broadcaster) *RoomService {
	return &RoomService{DB: db, Events: events}
}

func (s *RoomService) Create(room models.Room) (models.Room, error) {
	if room.RoomNumber == "" {
		return room, Validationf("room number is required")
	}
	if room.RoomTypeID == 0 {
		return room, Validationf("room type is required")
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	if room.HousekeepingStatus == "" {
		room.HousekeepingStatus = models.HousekeepingClean
	}
	if err := s.DB.Create(&room).Error; err != nil {
		return room, wrapDB(err, "room")
	}
	return room, nil
}

func (s *RoomService) GetAll() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.Preload("RoomType").Order("room_number ASC").Find(&rooms).Error; err != nil {
		return nil, wrapDB(err, "rooms")
	}
	return rooms, nil
}

func (s *RoomService) GetByID(id uint) (models.Room, error) {
	var room models.Room
	if err := s.DB.Preload("RoomType").First(&room, id).Error; err != nil {
		return room, wrapDB(err, "room")
	}
	return room, nil
}

func (s *RoomService) Update(room models.Room) error {
	if err := s.DB.Model(&models.Room{}).Where("id = ?", room.ID).Updates(room).Error; err != nil {
		return wrapDB(err, "room")
	}
	return nil
}

// UpdateState mutates the persistent status fields and broadcasts so the
// housekeeping client refreshes.
func (s *RoomService) UpdateState(id uint, status, housekeeping *string, dnd *bool) (models.Room, error) {
	updates := map[string]interface{}{}
	if status != nil {
		switch *status {
		case models.RoomAvailable, models.RoomOccupied, models.RoomMaintenance:
		default:
			return models.Room{}, Validationf("unknown room status %q", *status)
		}
		updates["status"] = *status
	}
	if housekeeping != nil {
		switch *housekeeping {
		case models.HousekeepingClean, models.HousekeepingDirty, models.HousekeepingCleaning:
		default:
			return models.Room{}, Validationf("unknown housekeeping status %q", *housekeeping)
		}
		updates["housekeeping_status"] = *housekeeping
	}
	if dnd != nil {
		updates["do_not_disturb"] = *dnd
	}
	if len(updates) == 0 {
		return models.Room{}, Validationf("nothing to update")
	}

	res := s.DB.Model(&models.Room{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return models.Room{}, wrapDB(res.Error, "room")
	}
	if res.RowsAffected == 0 {
		return models.Room{}, NotFoundf("room %d not found", id)
	}

	room, err := s.GetByID(id)
	if err != nil {
		return room, err
	}
	if s.Events != nil {
		if err := s.Events.Publish(EventHousekeepingUpdated, map[string]interface{}{
			"roomId":             room.ID,
			"status":             room.Status,
			"housekeepingStatus": room.HousekeepingStatus,
			"doNotDisturb":       room.DoNotDisturb,
		}); err != nil {
			// Partial-failure policy: the update stands.
			return room, nil
		}
	}
	return room, nil
}

// Delete refuses while any live booking line still references the room.
func (s *RoomService) Delete(id uint) error {
	var count int64
	err := s.DB.Model(&models.RoomLine{}).
		Joins("JOIN bookings ON bookings.id = room_lines.booking_id AND bookings.deleted_at IS NULL").
		Where("room_lines.room_id = ? AND bookings.status IN ?",
			id, []string{models.BookingPending, models.BookingBooked, models.BookingCheckedIn}).
		Count(&count).Error
	if err != nil {
		return wrapDB(err, "room lines")
	}
	if count > 0 {
		return InvalidTransitionf("room is referenced by %d live booking line(s)", count)
	}
	if err := s.DB.Delete(&models.Room{}, id).Error; err != nil {
		return wrapDB(err, "room")
	}
	return nil
}
