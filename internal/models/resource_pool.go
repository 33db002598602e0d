package models

import "time"

// ResourceType identifies a category of bookable hospital capacity.
type ResourceType string

const (
	ResourceBed              ResourceType = "bed"
	ResourceICU              ResourceType = "icu"
	ResourceOperationTheatre ResourceType = "operation_theatre"
	ResourceVentilator       ResourceType = "ventilator"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceBed, ResourceICU, ResourceOperationTheatre, ResourceVentilator:
		return true
	}
	return false
}

// ResourcePool represents the resource_pools table: the current-quantity
// counters for one resource type at one hospital. One row per
// (hospital_id, resource_type) pair; the row is the unit of contention.
//
// Invariant after every mutation:
//
//	Total == Available + Occupied + Reserved + Maintenance
type ResourcePool struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	HospitalID   uint         `gorm:"not null;uniqueIndex:idx_hospital_resource" json:"hospital_id"`
	ResourceType ResourceType `gorm:"size:50;not null;uniqueIndex:idx_hospital_resource" json:"resource_type"`
	Total        int          `gorm:"not null;default:0" json:"total"`
	Available    int          `gorm:"not null;default:0" json:"available"`
	Occupied     int          `gorm:"not null;default:0" json:"occupied"`
	Reserved     int          `gorm:"not null;default:0" json:"reserved"`
	Maintenance  int          `gorm:"not null;default:0" json:"maintenance"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `gorm:"index" json:"updated_at"`

	// Relationships
	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for ResourcePool model
func (ResourcePool) TableName() string {
	return "resource_pools"
}

// Balanced reports whether the counters satisfy the conservation invariant.
func (p *ResourcePool) Balanced() bool {
	return p.Total == p.Available+p.Occupied+p.Reserved+p.Maintenance
}
