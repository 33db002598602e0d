package models

import "time"

// Hospital represents a hospital/medical facility offering bookable
// resources. Resource pools are created when the hospital registers a
// resource type and stay alive while the hospital is active.
type Hospital struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"size:50;uniqueIndex" json:"code"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Address       string    `gorm:"type:text" json:"address,omitempty"`
	City          string    `gorm:"size:100" json:"city,omitempty"`
	ContactNumber string    `gorm:"size:50" json:"contact_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}
