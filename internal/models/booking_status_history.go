package models

import "time"

// BookingStatusHistory represents the booking_status_histories table: the
// append-only ledger of every booking state transition. OldStatus is nil
// for the creation entry. ChangedBy is nil when the system (expiry sweep)
// performed the transition.
type BookingStatusHistory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BookingID uint           `gorm:"not null;index" json:"booking_id"`
	OldStatus *BookingStatus `gorm:"size:20" json:"old_status"`
	NewStatus BookingStatus  `gorm:"size:20;not null" json:"new_status"`
	ChangedBy *uint          `gorm:"index" json:"changed_by"`
	Reason    string         `gorm:"size:255" json:"reason,omitempty"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`

	// Relationships
	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// TableName specifies the table name for BookingStatusHistory model
func (BookingStatusHistory) TableName() string {
	return "booking_status_histories"
}
