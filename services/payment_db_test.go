package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-pms/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}
	return db, mock
}

func TestRecomputePaymentStatusPartial(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(db, "secret")

	mock.ExpectQuery("SELECT \\* FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_price", "payment_status"}).
			AddRow(5, 1000000.0, models.PaymentStatusUnpaid))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(400000.0))
	mock.ExpectExec("UPDATE `bookings` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	status, err := svc.RecomputePaymentStatus(nil, 5)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartially, status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputePaymentStatusUnchangedSkipsUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(db, "secret")

	mock.ExpectQuery("SELECT \\* FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_price", "payment_status"}).
			AddRow(5, 1000000.0, models.PaymentStatusPaid))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1000000.0))

	status, err := svc.RecomputePaymentStatus(nil, 5)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)

	// No UPDATE was issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputePaymentStatusRefundedShortCircuits(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(db, "secret")

	mock.ExpectQuery("SELECT \\* FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_price", "payment_status"}).
			AddRow(5, 1000000.0, models.PaymentStatusRefunded))

	status, err := svc.RecomputePaymentStatus(nil, 5)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextBookingCodeFreshMonth(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT `code` FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"code"}))

	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	code, err := nextBookingCode(db, now)
	require.NoError(t, err)
	assert.Equal(t, "BK-0126-00001", code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextBookingCodeIncrements(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT `code` FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("BK-0126-00042"))

	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	code, err := nextBookingCode(db, now)
	require.NoError(t, err)
	assert.Equal(t, "BK-0126-00043", code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubConfirmer struct {
	confirmed []uint
}

func (c *stubConfirmer) Confirm(bookingID uint) (*models.Booking, error) {
	c.confirmed = append(c.confirmed, bookingID)
	return &models.Booking{ID: bookingID, Status: models.BookingBooked}, nil
}

// The intent signature covers reference|amount only. Echoing it on the return
// leg must not settle the payment: the callback signature binds the outcome.
func TestGatewayReturnRejectsIntentSignature(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(db, "secret")

	mock.ExpectQuery("SELECT \\* FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "reference", "amount", "status"}).
			AddRow(3, 7, "ref-abc", 1500.0, models.PaymentPending))

	forged := svc.sign("ref-abc", 1500)
	_, err := svc.HandleGatewayReturn("ref-abc", true, forged)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	// No settlement was written.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayReturnSettlesAndConfirmsHold(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPaymentService(db, "secret")
	confirmer := &stubConfirmer{}
	svc.Confirmer = confirmer

	mock.ExpectQuery("SELECT \\* FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "reference", "amount", "status"}).
			AddRow(3, 7, "ref-abc", 1500.0, models.PaymentPending))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `payments` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_price", "payment_status"}).
			AddRow(7, 1500.0, models.PaymentStatusUnpaid))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1500.0))
	mock.ExpectExec("UPDATE `bookings` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// Post-settlement load that drives the pending -> booked promotion.
	mock.ExpectQuery("SELECT \\* FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "status"}).
			AddRow(7, "BK-0326-00007", models.BookingPending))

	payment, err := svc.HandleGatewayReturn("ref-abc", true, svc.signResult("ref-abc", 1500, true))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	assert.Equal(t, []uint{7}, confirmer.confirmed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
