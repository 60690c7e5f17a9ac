package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotel-pms/models"
)

// BookingConfirmer promotes a pending hold once its payment settles.
type BookingConfirmer interface {
	Confirm(bookingID uint) (*models.Booking, error)
}

type PaymentService struct {
	DB *gorm.DB
	// GatewaySecret signs outbound payment intents and verifies inbound
	// gateway callbacks.
	GatewaySecret string
	// Confirmer, when set, is invoked after a successful gateway settlement
	// against a still-pending booking.
	Confirmer BookingConfirmer
}

func NewPaymentService(db *gorm.DB, gatewaySecret string) *PaymentService {
	return &PaymentService{DB: db, GatewaySecret: gatewaySecret}
}

// derivePaymentStatus maps the settled sum against the booking total.
func derivePaymentStatus(paid, total float64) string {
	switch {
	case paid <= 0:
		return models.PaymentStatusUnpaid
	case paid >= total:
		return models.PaymentStatusPaid
	default:
		return models.PaymentStatusPartially
	}
}

// RecomputePaymentStatus re-derives the booking's payment status from the sum
// of its paid payments. Idempotent; it runs after every event that can move
// either side of the comparison (new settlement, price recalculation).
func (s *PaymentService) RecomputePaymentStatus(tx *gorm.DB, bookingID uint) (string, error) {
	if tx == nil {
		tx = s.DB
	}

	var booking models.Booking
	if err := tx.First(&booking, bookingID).Error; err != nil {
		return "", wrapDB(err, "booking")
	}
	// A refunded booking stays refunded; the sum of paid payments is empty by
	// then anyway.
	if booking.PaymentStatus == models.PaymentStatusRefunded {
		return models.PaymentStatusRefunded, nil
	}

	var paid float64
	err := tx.Model(&models.Payment{}).
		Where("booking_id = ? AND status = ?", bookingID, models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error
	if err != nil {
		return "", wrapDB(err, "payments")
	}

	status := derivePaymentStatus(paid, booking.TotalPrice)
	if status != booking.PaymentStatus {
		if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
			Update("payment_status", status).Error; err != nil {
			return "", wrapDB(err, "booking")
		}
	}
	return status, nil
}

// PaidSum returns the settled amount for a booking.
func (s *PaymentService) PaidSum(tx *gorm.DB, bookingID uint) (float64, error) {
	if tx == nil {
		tx = s.DB
	}
	var paid float64
	err := tx.Model(&models.Payment{}).
		Where("booking_id = ? AND status = ?", bookingID, models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error
	if err != nil {
		return 0, wrapDB(err, "payments")
	}
	return paid, nil
}

// RecordCashPayment settles a cash (or card) payment at the desk and updates
// the booking's change bookkeeping.
func (s *PaymentService) RecordCashPayment(bookingID uint, amount, received float64, method string) (models.Payment, error) {
	if amount <= 0 {
		return models.Payment{}, Validationf("payment amount must be positive")
	}
	if method == "" {
		method = models.MethodCash
	}

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			return wrapDB(err, "booking")
		}
		if booking.Status == models.BookingCancelled {
			return InvalidTransitionf("booking %s is cancelled", booking.Code)
		}

		now := time.Now()
		payment = models.Payment{
			BookingID: bookingID,
			Reference: uuid.NewString(),
			Amount:    amount,
			Method:    method,
			Category:  "settlement",
			Status:    models.PaymentPaid,
			PaidAt:    &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return wrapDB(err, "payment")
		}

		if received > 0 {
			change := received - amount
			if change < 0 {
				change = 0
			}
			if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
				Updates(map[string]interface{}{
					"money_received": received,
					"change":         change,
				}).Error; err != nil {
				return wrapDB(err, "booking")
			}
		}

		_, err := s.RecomputePaymentStatus(tx, bookingID)
		return err
	})
	if err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

// PaymentIntent is the outbound "create payment" call to the online gateway:
// a unique reference, the amount and a signature the callback must echo.
type PaymentIntent struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Signature string  `json:"signature"`
}

func (s *PaymentService) sign(reference string, amount float64) string {
	mac := hmac.New(sha256.New, []byte(s.GatewaySecret))
	fmt.Fprintf(mac, "%s|%.2f", reference, amount)
	return hex.EncodeToString(mac.Sum(nil))
}

// signResult binds the callback signature to the outcome. The intent signature
// only covers reference|amount, so accepting it on the return leg would let
// the payer mint their own "success".
func (s *PaymentService) signResult(reference string, amount float64, success bool) string {
	result := "failed"
	if success {
		result = "success"
	}
	mac := hmac.New(sha256.New, []byte(s.GatewaySecret))
	fmt.Fprintf(mac, "%s|%.2f|%s", reference, amount, result)
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePaymentIntent registers a pending gateway payment and returns the
// signed parameters for the redirect.
func (s *PaymentService) CreatePaymentIntent(bookingID uint, amount float64) (PaymentIntent, error) {
	if amount <= 0 {
		return PaymentIntent{}, Validationf("payment amount must be positive")
	}

	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		return PaymentIntent{}, wrapDB(err, "booking")
	}
	if booking.Status == models.BookingCancelled || booking.Status == models.BookingCompleted {
		return PaymentIntent{}, InvalidTransitionf("booking %s can no longer take payments", booking.Code)
	}

	payment := models.Payment{
		BookingID: bookingID,
		Reference: uuid.NewString(),
		Amount:    amount,
		Method:    models.MethodGateway,
		Category:  "settlement",
		Status:    models.PaymentPending,
	}
	if err := s.DB.Create(&payment).Error; err != nil {
		return PaymentIntent{}, wrapDB(err, "payment")
	}

	return PaymentIntent{
		Reference: payment.Reference,
		Amount:    amount,
		Signature: s.sign(payment.Reference, amount),
	}, nil
}

// HandleGatewayReturn processes the asynchronous settlement callback. The
// signature must verify, and a payment already in a terminal state
// short-circuits instead of reapplying side effects.
func (s *PaymentService) HandleGatewayReturn(reference string, success bool, signature string) (models.Payment, error) {
	var payment models.Payment
	if err := s.DB.Where("reference = ?", reference).First(&payment).Error; err != nil {
		return payment, wrapDB(err, "payment")
	}

	expected := s.signResult(payment.Reference, payment.Amount, success)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return payment, Validationf("invalid gateway signature")
	}

	// Idempotency boundary: terminal payments are done.
	if payment.Status != models.PaymentPending {
		return payment, nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		status := models.PaymentFailed
		updates := map[string]interface{}{}
		if success {
			status = models.PaymentPaid
			now := time.Now()
			updates["paid_at"] = now
		}
		updates["status"] = status

		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).
			Updates(updates).Error; err != nil {
			return wrapDB(err, "payment")
		}
		payment.Status = status

		_, err := s.RecomputePaymentStatus(tx, payment.BookingID)
		return err
	})
	if err != nil {
		return payment, err
	}

	// A settled payment against a hold promotes it to booked. Failure here is
	// logged, not returned: the money is taken and the confirm endpoint can
	// recover the transition.
	if success && s.Confirmer != nil {
		var booking models.Booking
		if err := s.DB.First(&booking, payment.BookingID).Error; err != nil {
			log.Printf("[payments] load booking %d after settlement: %v", payment.BookingID, err)
		} else if booking.Status == models.BookingPending {
			if _, err := s.Confirmer.Confirm(booking.ID); err != nil {
				log.Printf("[payments] confirm booking %s after settlement: %v", booking.Code, err)
			}
		}
	}
	return payment, nil
}

// RefundBooking flips every settled payment to refunded and stamps the
// booking. Used by cancellation when money has already changed hands.
func (s *PaymentService) RefundBooking(tx *gorm.DB, bookingID uint) error {
	if tx == nil {
		tx = s.DB
	}
	if err := tx.Model(&models.Payment{}).
		Where("booking_id = ? AND status = ?", bookingID, models.PaymentPaid).
		Update("status", models.PaymentRefunded).Error; err != nil {
		return wrapDB(err, "payments")
	}
	if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
		Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
		return wrapDB(err, "booking")
	}
	return nil
}

func (s *PaymentService) ListByBooking(bookingID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.DB.Where("booking_id = ?", bookingID).
		Order("created_at ASC").Find(&payments).Error; err != nil {
		return nil, wrapDB(err, "payments")
	}
	return payments, nil
}
