package repository

import (
	"fmt"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"gorm.io/gorm"
)

type ResourceAuditRepository struct {
	db *gorm.DB
}

func NewResourceAuditRepo(db *gorm.DB) *ResourceAuditRepository {
	return &ResourceAuditRepository{db: db}
}

// WithTx returns a repository bound to the given transaction so audit
// entries commit or roll back together with the pool mutation they record.
func (r *ResourceAuditRepository) WithTx(tx *gorm.DB) *ResourceAuditRepository {
	return &ResourceAuditRepository{db: tx}
}

// Create appends an audit entry. Entries are immutable once written.
func (r *ResourceAuditRepository) Create(entry *models.ResourceAuditLog) error {
	if entry.HospitalID == 0 {
		return fmt.Errorf("%w: audit entry requires hospital_id", apperrors.ErrValidation)
	}
	if !entry.ChangeType.Valid() {
		return fmt.Errorf("%w: unknown change type %q", apperrors.ErrValidation, entry.ChangeType)
	}
	return r.db.Create(entry).Error
}

// GetByHospital retrieves audit entries for a hospital, newest first,
// optionally scoped to one resource type.
func (r *ResourceAuditRepository) GetByHospital(hospitalID uint, resourceType *models.ResourceType, limit, offset int) ([]models.ResourceAuditLog, error) {
	q := r.db.Where("hospital_id = ?", hospitalID)
	if resourceType != nil {
		q = q.Where("resource_type = ?", *resourceType)
	}
	var entries []models.ResourceAuditLog
	err := q.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

// GetByBooking retrieves the audit entries caused by one booking, oldest first
func (r *ResourceAuditRepository) GetByBooking(bookingID uint) ([]models.ResourceAuditLog, error) {
	var entries []models.ResourceAuditLog
	err := r.db.Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// ChangeTypeCount is one row of the per-cause aggregate.
type ChangeTypeCount struct {
	ChangeType models.ResourceChangeType `json:"change_type"`
	Count      int64                     `json:"count"`
}

// GetChangeStats aggregates entry counts per change type for a hospital
func (r *ResourceAuditRepository) GetChangeStats(hospitalID uint) ([]ChangeTypeCount, error) {
	var stats []ChangeTypeCount
	err := r.db.Model(&models.ResourceAuditLog{}).
		Select("change_type, COUNT(*) as count").
		Where("hospital_id = ?", hospitalID).
		Group("change_type").
		Find(&stats).Error
	return stats, err
}

// Cleanup deletes entries older than the retention window. This is an
// explicit maintenance operation, never part of the transactional path.
func (r *ResourceAuditRepository) Cleanup(olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.ResourceAuditLog{})
	return res.RowsAffected, res.Error
}
