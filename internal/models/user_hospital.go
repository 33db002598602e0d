package models

import "time"

// UserHospital represents the many-to-many relationship between authority
// users and hospitals. An authority may only operate on bookings and
// resource pools of hospitals listed here; admins bypass the check.
type UserHospital struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	HospitalID uint      `gorm:"not null;index" json:"hospital_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for UserHospital model
func (UserHospital) TableName() string {
	return "user_hospitals"
}
