package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking represents the bookings table: a request for hospital capacity.
// Status is only ever written through the booking service's lifecycle
// operations. ResourcesHeld records whether approval actually took
// ResourcesAllocated units from the pool; only held units are returned on
// completion or cancellation.
type Booking struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	UserID             uint            `gorm:"not null;index" json:"user_id"`
	HospitalID         uint            `gorm:"not null;index" json:"hospital_id"`
	ResourceType       ResourceType    `gorm:"size:50;not null" json:"resource_type"`
	PatientName        string          `gorm:"size:255;not null" json:"patient_name"`
	PatientAge         int             `gorm:"default:0" json:"patient_age"`
	MedicalCondition   string          `gorm:"type:text" json:"medical_condition,omitempty"`
	ContactNumber      string          `gorm:"size:50" json:"contact_number,omitempty"`
	Urgency            Urgency         `gorm:"size:20;default:'medium'" json:"urgency"`
	ScheduledDate      time.Time       `json:"scheduled_date"`
	EstimatedDuration  int             `gorm:"default:24;comment:Estimated duration in hours" json:"estimated_duration"`
	ResourcesAllocated int             `gorm:"default:1" json:"resources_allocated"`
	ResourcesHeld      bool            `gorm:"default:false" json:"resources_held"`
	PaymentAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"payment_amount"`
	PaymentStatus      PaymentStatus   `gorm:"size:20;default:'pending'" json:"payment_status"`
	Status             BookingStatus   `gorm:"size:20;default:'pending';index" json:"status"`
	ExpiresAt          *time.Time      `gorm:"index" json:"expires_at"`
	ApprovedBy         *uint           `json:"approved_by"`
	ApprovedAt         *time.Time      `json:"approved_at"`
	DeclineReason      string          `gorm:"type:text" json:"decline_reason,omitempty"`
	CancelReason       string          `gorm:"type:text" json:"cancel_reason,omitempty"`
	AuthorityNotes     string          `gorm:"type:text" json:"authority_notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `gorm:"index" json:"updated_at"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for Booking model
func (Booking) TableName() string {
	return "bookings"
}

// Expired reports whether the booking sits past its expiry deadline.
// Only non-terminal bookings can expire.
func (b *Booking) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && now.After(*b.ExpiresAt) && !b.Status.IsTerminal()
}

// ApprovedDetails carries the fields that are only meaningful once a
// booking has been approved.
type ApprovedDetails struct {
	ApprovedBy         uint      `json:"approved_by"`
	ApprovedAt         time.Time `json:"approved_at"`
	ResourcesAllocated int       `json:"resources_allocated"`
	AuthorityNotes     string    `json:"authority_notes,omitempty"`
}

// DeclinedDetails carries the fields that are only meaningful for a
// declined booking.
type DeclinedDetails struct {
	Reason         string `json:"reason"`
	AuthorityNotes string `json:"authority_notes,omitempty"`
}

// CancelledDetails carries the fields that are only meaningful for a
// cancelled booking.
type CancelledDetails struct {
	Reason       string `json:"reason"`
	WasAllocated bool   `json:"was_allocated"`
}

// ApprovedDetails returns the approval payload when the booking has been
// approved (including later completed bookings, which passed through
// approval). ok is false for any other state.
func (b *Booking) ApprovedDetails() (ApprovedDetails, bool) {
	if b.Status != BookingApproved && b.Status != BookingCompleted {
		return ApprovedDetails{}, false
	}
	if b.ApprovedBy == nil || b.ApprovedAt == nil {
		return ApprovedDetails{}, false
	}
	return ApprovedDetails{
		ApprovedBy:         *b.ApprovedBy,
		ApprovedAt:         *b.ApprovedAt,
		ResourcesAllocated: b.ResourcesAllocated,
		AuthorityNotes:     b.AuthorityNotes,
	}, true
}

// DeclinedDetails returns the decline payload when the booking was declined.
func (b *Booking) DeclinedDetails() (DeclinedDetails, bool) {
	if b.Status != BookingDeclined {
		return DeclinedDetails{}, false
	}
	return DeclinedDetails{Reason: b.DeclineReason, AuthorityNotes: b.AuthorityNotes}, true
}

// CancelledDetails returns the cancellation payload when the booking was
// cancelled. WasAllocated is true when the booking held pool capacity and
// therefore released it on cancellation.
func (b *Booking) CancelledDetails() (CancelledDetails, bool) {
	if b.Status != BookingCancelled {
		return CancelledDetails{}, false
	}
	return CancelledDetails{Reason: b.CancelReason, WasAllocated: b.ResourcesHeld}, true
}
