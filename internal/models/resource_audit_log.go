package models

import "time"

// ResourceChangeType classifies the cause of a resource pool mutation.
type ResourceChangeType string

const (
	ChangeManualUpdate     ResourceChangeType = "manual_update"
	ChangeBookingApproved  ResourceChangeType = "booking_approved"
	ChangeBookingCompleted ResourceChangeType = "booking_completed"
	ChangeBookingCancelled ResourceChangeType = "booking_cancelled"
	ChangeSystemAdjustment ResourceChangeType = "system_adjustment"
)

// Valid reports whether t is a known change type.
func (t ResourceChangeType) Valid() bool {
	switch t {
	case ChangeManualUpdate, ChangeBookingApproved, ChangeBookingCompleted,
		ChangeBookingCancelled, ChangeSystemAdjustment:
		return true
	}
	return false
}

// ResourceAuditLog represents the resource_audit_logs table: the
// append-only ledger of every resource pool mutation. Entries are written
// in the same transaction as the counter change they describe and are
// never updated or deleted outside of retention cleanup.
//
// OldValue/NewValue record the pool's available count before/after the
// mutation; Quantity is the signed delta applied to it.
type ResourceAuditLog struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	HospitalID   uint               `gorm:"not null;index" json:"hospital_id"`
	ResourceType ResourceType       `gorm:"size:50;not null" json:"resource_type"`
	ChangeType   ResourceChangeType `gorm:"size:50;not null" json:"change_type"`
	OldValue     int                `gorm:"not null" json:"old_value"`
	NewValue     int                `gorm:"not null" json:"new_value"`
	Quantity     int                `gorm:"not null" json:"quantity"`
	BookingID    *uint              `gorm:"index" json:"booking_id"`
	ChangedBy    *uint              `gorm:"index" json:"changed_by"`
	Reason       string             `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt    time.Time          `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for ResourceAuditLog model
func (ResourceAuditLog) TableName() string {
	return "resource_audit_logs"
}
