package models

// BookingStatus is the explicit booking lifecycle state.
// All transitions are validated against the table below; no caller may
// write a status outside of the lifecycle operations.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingCompleted BookingStatus = "completed"
	BookingDeclined  BookingStatus = "declined"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the single source of truth for the booking state
// machine. Terminal states (completed, declined, cancelled) have no entry.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingApproved, BookingDeclined, BookingCancelled},
	BookingApproved: {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether the state machine permits moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is defined from s.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingCompleted, BookingDeclined, BookingCancelled:
		return true
	}
	return false
}

// Urgency is the clinical urgency attached to a booking request.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Valid reports whether u is a known urgency level.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// PaymentStatus tracks whether the booking's payment has been captured.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)
