package service

import (
	"context"
	"log"
)

// NotificationEvent identifies a booking lifecycle event worth notifying
// the requesting user about.
type NotificationEvent string

const (
	NotifyApproved  NotificationEvent = "approved"
	NotifyDeclined  NotificationEvent = "declined"
	NotifyCompleted NotificationEvent = "completed"
	NotifyCancelled NotificationEvent = "cancelled"
)

// Notification is the payload handed to the delivery collaborator.
type Notification struct {
	Event           NotificationEvent `json:"event"`
	BookingID       uint              `json:"booking_id"`
	RecipientUserID uint              `json:"recipient_user_id"`
	Details         string            `json:"details,omitempty"`
}

// Notifier is the external notification collaborator. Implementations are
// called after the booking transaction has committed and must tolerate
// that: a failed or slow delivery never rolls back or blocks a booking
// decision.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the process log. It stands in for
// the real delivery channel (push/SMS/email) which lives outside this
// service.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Printf("notify user %d: booking %d %s %s", n.RecipientUserID, n.BookingID, n.Event, n.Details)
	return nil
}
