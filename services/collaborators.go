package services

import (
	"log"

	"hotel-pms/models"
)

// Real-time events broadcast after state-changing operations, for any
// connected observer (e.g. the housekeeping mobile client) to refresh.
const (
	EventHousekeepingUpdated = "room.housekeeping.updated"
	EventTaskRefresh         = "task.refresh"
	EventCheckoutCompleted   = "checkout.completed"
)

// Collaborator boundaries. All of these are fire-and-forget from the engine's
// point of view: a failure is logged and swallowed, and the triggering state
// transition still commits. Guest-facing room and payment state never rolls
// back because a notification failed.

type Notifier interface {
	SendBookingConfirmation(booking models.Booking) error
	SendReceipt(booking models.Booking, receipt Receipt) error
}

type TaskCreator interface {
	CreateCleaningTask(roomID uint, roomNumber, bookingCode string) error
}

type Broadcaster interface {
	Publish(event string, payload interface{}) error
}

// LogNotifier stands in for the mail collaborator in deployments without one.
type LogNotifier struct{}

func (LogNotifier) SendBookingConfirmation(b models.Booking) error {
	log.Printf("notify: booking %s confirmed for %s", b.Code, b.CustomerName)
	return nil
}

func (LogNotifier) SendReceipt(b models.Booking, r Receipt) error {
	log.Printf("notify: receipt for booking %s, total %.0f", b.Code, r.Total)
	return nil
}

type LogTaskCreator struct{}

func (LogTaskCreator) CreateCleaningTask(roomID uint, roomNumber, bookingCode string) error {
	log.Printf("task: cleaning room %s (id=%d) after booking %s", roomNumber, roomID, bookingCode)
	return nil
}

type LogBroadcaster struct{}

func (LogBroadcaster) Publish(event string, payload interface{}) error {
	log.Printf("broadcast: %s %v", event, payload)
	return nil
}
