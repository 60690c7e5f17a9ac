package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotel-pms/models"
)

func TestPickCheckOutLines(t *testing.T) {
	lines := []models.RoomLine{
		{Model: gorm.Model{ID: 1}, Status: models.LineCheckedIn},
		{Model: gorm.Model{ID: 2}, Status: models.LineCheckedIn},
		{Model: gorm.Model{ID: 3}, Status: models.LineCompleted},
	}

	t.Run("subset leaves other lines live", func(t *testing.T) {
		picks, remaining, err := pickCheckOutLines(lines, []uint{1})
		require.NoError(t, err)
		require.Len(t, picks, 1)
		assert.Equal(t, uint(1), picks[0].ID)
		// Line 2 is still checked in; the completed line never counts.
		assert.Equal(t, 1, remaining)
	})

	t.Run("last live line empties the booking", func(t *testing.T) {
		picks, remaining, err := pickCheckOutLines(lines, []uint{1, 2})
		require.NoError(t, err)
		assert.Len(t, picks, 2)
		assert.Equal(t, 0, remaining)
	})

	t.Run("empty selection takes every checked-in line", func(t *testing.T) {
		picks, remaining, err := pickCheckOutLines(lines, nil)
		require.NoError(t, err)
		assert.Len(t, picks, 2)
		assert.Equal(t, 0, remaining)
	})

	t.Run("completed line cannot be selected again", func(t *testing.T) {
		_, _, err := pickCheckOutLines(lines, []uint{3})
		require.Error(t, err)
		assert.Equal(t, KindInvalidTransition, KindOf(err))
	})

	t.Run("unknown line id", func(t *testing.T) {
		_, _, err := pickCheckOutLines(lines, []uint{99})
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

func bookingRow(id uint, code, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "status"}).AddRow(id, code, status)
}

func expectGuardedBookingLoad(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `bookings`").WillReturnRows(rows)
	mock.ExpectRollback()
}

func TestCheckInRequiresBooked(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db}

	expectGuardedBookingLoad(mock, bookingRow(7, "BK-0326-00007", models.BookingPending))

	_, err := svc.CheckIn(7)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOutRequiresCheckedIn(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db}

	expectGuardedBookingLoad(mock, bookingRow(7, "BK-0326-00007", models.BookingBooked))

	_, _, err := svc.CheckOut(7, nil)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRejectsCompletedBooking(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db}

	expectGuardedBookingLoad(mock, bookingRow(7, "BK-0326-00007", models.BookingCompleted))

	_, err := svc.Cancel(7)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmRejectsCancelledBooking(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db}

	expectGuardedBookingLoad(mock, bookingRow(7, "BK-0326-00007", models.BookingCancelled))

	_, err := svc.Confirm(7)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Confirm re-runs the capacity check before promoting the hold: a pending
// booking whose rooms were claimed in the meantime cannot become booked.
func TestConfirmRechecksCapacity(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db, Detector: NewConflictDetector(db, 30*time.Minute)}

	in := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `bookings`").
		WillReturnRows(bookingRow(7, "BK-0326-00007", models.BookingPending))
	mock.ExpectQuery("SELECT \\* FROM `room_lines`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "booking_id", "room_type_id", "status", "expected_check_in", "expected_check_out"}).
			AddRow(10, 7, 2, models.LinePending, in, out))
	mock.ExpectQuery("SELECT \\* FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type_name", "capacity"}).
			AddRow(2, "Double", 2))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `rooms`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	// Another booking's line took the last Double for the same nights.
	mock.ExpectQuery("FROM `room_lines` JOIN bookings").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "booking_id", "room_type_id", "expected_check_in", "expected_check_out"}).
			AddRow(33, 8, 2, in, out))
	mock.ExpectRollback()

	_, err := svc.Confirm(7)
	require.Error(t, err)
	assert.Equal(t, KindCapacityConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A hold confirmed between the sweep's scan and its transaction must not be
// deleted: the in-transaction re-filter sees it as booked and skips it.
func TestSweepSparesConfirmedHold(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db, HoldTTL: 30 * time.Minute}

	mock.ExpectQuery("SELECT `id` FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	swept, err := svc.SweepExpiredHolds()
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepDeletesExpiredHolds(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db, HoldTTL: 30 * time.Minute}

	mock.ExpectQuery("SELECT `id` FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectExec("UPDATE `service_lines` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE `room_lines` SET").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `bookings` SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	swept, err := svc.SweepExpiredHolds()
	require.NoError(t, err)
	assert.Equal(t, 2, swept)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two lines of the same type over disjoint windows each claim one room for
// their own window only; a type with a single free room accepts both.
func TestCheckCapacityDisjointWindows(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db, Detector: NewConflictDetector(db, 30*time.Minute)}

	lines := []RoomLineInput{
		{
			RoomTypeID: 2,
			CheckIn:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			RoomTypeID: 2,
			CheckIn:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	mock.ExpectQuery("SELECT \\* FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type_name", "capacity"}).
			AddRow(2, "Double", 2))
	for range lines {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `rooms`").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("FROM `room_lines` JOIN bookings").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	err := svc.checkCapacity(db, lines, 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckCapacityOverlappingWindowsRejected(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &BookingService{DB: db, Detector: NewConflictDetector(db, 30*time.Minute)}

	lines := []RoomLineInput{
		{
			RoomTypeID: 2,
			CheckIn:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			RoomTypeID: 2,
			CheckIn:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	mock.ExpectQuery("SELECT \\* FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type_name", "capacity"}).
			AddRow(2, "Double", 2))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `rooms`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM `room_lines` JOIN bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.checkCapacity(db, lines, 0)
	require.Error(t, err)
	assert.Equal(t, KindCapacityConflict, KindOf(err))
	assert.Contains(t, err.Error(), "2 requested")
	assert.NoError(t, mock.ExpectationsWereMet())
}
