package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
)

func makeRoom(id uint, typeID uint, number, status string) models.Room {
	r := models.Room{
		RoomTypeID: typeID,
		RoomNumber: number,
		Status:     status,
	}
	r.ID = id
	return r
}

func TestResolveAvailabilityTypeReservation(t *testing.T) {
	// Two Double rooms, one type-level reservation without a concrete room:
	// the lowest room number is shown booked, the other stays available.
	rooms := []models.Room{
		makeRoom(2, 1, "102", models.RoomAvailable),
		makeRoom(1, 1, "101", models.RoomAvailable),
	}
	lines := []models.RoomLine{
		{
			RoomTypeID:       1,
			Status:           models.LineBooked,
			ExpectedCheckIn:  datePtr(2026, 4, 1),
			ExpectedCheckOut: datePtr(2026, 4, 3),
		},
	}

	got := resolveAvailability(rooms, lines, window4(1, 3), time.Now())
	require.Len(t, got, 2)
	assert.Equal(t, "101", got[0].Room.RoomNumber)
	assert.Equal(t, VisibleBooked, got[0].VisibleStatus)
	assert.Equal(t, "102", got[1].Room.RoomNumber)
	assert.Equal(t, VisibleAvailable, got[1].VisibleStatus)
}

func window4(fromDay, toDay int) DateRange {
	return DateRange{
		From: time.Date(2026, 4, fromDay, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 4, toDay, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolveAvailabilityAssignedRoom(t *testing.T) {
	roomID := uint(1)
	rooms := []models.Room{
		makeRoom(1, 1, "101", models.RoomAvailable),
		makeRoom(2, 1, "102", models.RoomAvailable),
	}
	lines := []models.RoomLine{
		{
			RoomTypeID:       1,
			RoomID:           &roomID,
			Status:           models.LineCheckedIn,
			ExpectedCheckIn:  datePtr(2026, 4, 1),
			ExpectedCheckOut: datePtr(2026, 4, 3),
			ActualCheckIn:    datePtr(2026, 4, 1),
		},
	}

	got := resolveAvailability(rooms, lines, window4(2, 4), time.Now())
	require.Len(t, got, 2)
	assert.Equal(t, VisibleOccupied, got[0].VisibleStatus)
	assert.Equal(t, VisibleAvailable, got[1].VisibleStatus)
}

func TestResolveAvailabilityOutsideWindow(t *testing.T) {
	rooms := []models.Room{makeRoom(1, 1, "101", models.RoomAvailable)}
	lines := []models.RoomLine{
		{
			RoomTypeID:       1,
			Status:           models.LineBooked,
			ExpectedCheckIn:  datePtr(2026, 4, 10),
			ExpectedCheckOut: datePtr(2026, 4, 12),
		},
	}

	got := resolveAvailability(rooms, lines, window4(1, 5), time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, VisibleAvailable, got[0].VisibleStatus)
}

func TestResolveAvailabilityMaintenance(t *testing.T) {
	rooms := []models.Room{
		makeRoom(1, 1, "101", models.RoomMaintenance),
		makeRoom(2, 1, "102", models.RoomAvailable),
	}
	lines := []models.RoomLine{
		{
			RoomTypeID:       1,
			Status:           models.LineBooked,
			ExpectedCheckIn:  datePtr(2026, 4, 1),
			ExpectedCheckOut: datePtr(2026, 4, 3),
		},
	}

	// The maintenance room reads occupied and the type-level reservation
	// lands on the usable room.
	got := resolveAvailability(rooms, lines, window4(1, 3), time.Now())
	require.Len(t, got, 2)
	assert.Equal(t, VisibleOccupied, got[0].VisibleStatus)
	assert.Equal(t, VisibleBooked, got[1].VisibleStatus)
}

func TestResolveAvailabilityCheckoutHints(t *testing.T) {
	now := time.Date(2026, 4, 10, 11, 0, 0, 0, time.UTC)
	dueToday := uint(1)
	overdue := uint(2)
	rooms := []models.Room{
		makeRoom(1, 1, "101", models.RoomOccupied),
		makeRoom(2, 1, "102", models.RoomOccupied),
		makeRoom(3, 1, "103", models.RoomAvailable),
	}
	lines := []models.RoomLine{
		{
			RoomTypeID:       1,
			RoomID:           &dueToday,
			Status:           models.LineCheckedIn,
			ActualCheckIn:    datePtr(2026, 4, 8),
			ExpectedCheckIn:  datePtr(2026, 4, 8),
			ExpectedCheckOut: datePtr(2026, 4, 10),
		},
		{
			RoomTypeID:       1,
			RoomID:           &overdue,
			Status:           models.LineCheckedIn,
			ActualCheckIn:    datePtr(2026, 4, 5),
			ExpectedCheckIn:  datePtr(2026, 4, 5),
			ExpectedCheckOut: datePtr(2026, 4, 9),
		},
	}

	got := resolveAvailability(rooms, lines, window4(10, 10), now)
	require.Len(t, got, 3)
	assert.Equal(t, CheckoutToday, got[0].Checkout)
	assert.Equal(t, CheckoutPast, got[1].Checkout)
	assert.Empty(t, got[2].Checkout)
}

func TestResolveAvailabilityOccupiedWinsOverBooked(t *testing.T) {
	roomID := uint(1)
	rooms := []models.Room{makeRoom(1, 1, "101", models.RoomOccupied)}
	lines := []models.RoomLine{
		{
			RoomTypeID:       1,
			RoomID:           &roomID,
			Status:           models.LineCheckedIn,
			ActualCheckIn:    datePtr(2026, 4, 1),
			ActualCheckOut:   datePtr(2026, 4, 3),
			ExpectedCheckIn:  datePtr(2026, 4, 1),
			ExpectedCheckOut: datePtr(2026, 4, 3),
		},
		{
			RoomTypeID:       1,
			RoomID:           &roomID,
			Status:           models.LineBooked,
			ExpectedCheckIn:  datePtr(2026, 4, 3),
			ExpectedCheckOut: datePtr(2026, 4, 5),
		},
	}

	got := resolveAvailability(rooms, lines, window4(1, 5), time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, VisibleOccupied, got[0].VisibleStatus)
}
