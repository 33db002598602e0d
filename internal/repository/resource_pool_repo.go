package repository

import (
	"errors"
	"fmt"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"gorm.io/gorm"
)

type ResourcePoolRepository struct {
	db *gorm.DB
}

func NewResourcePoolRepo(db *gorm.DB) *ResourcePoolRepository {
	return &ResourcePoolRepository{db: db}
}

// WithTx returns a repository bound to the given transaction. Used by the
// services to run pool mutations inside the same transaction as the
// booking update and ledger appends.
func (r *ResourcePoolRepository) WithTx(tx *gorm.DB) *ResourcePoolRepository {
	return &ResourcePoolRepository{db: tx}
}

// GetPool retrieves the counter row for a hospital/resource-type pair
func (r *ResourcePoolRepository) GetPool(hospitalID uint, resourceType models.ResourceType) (*models.ResourcePool, error) {
	var pool models.ResourcePool
	err := r.db.Where("hospital_id = ? AND resource_type = ?", hospitalID, resourceType).
		First(&pool).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resource pool for hospital %d, type %s", apperrors.ErrNotFound, hospitalID, resourceType)
		}
		return nil, err
	}
	return &pool, nil
}

// GetPoolsByHospital retrieves all pools registered for a hospital
func (r *ResourcePoolRepository) GetPoolsByHospital(hospitalID uint) ([]models.ResourcePool, error) {
	var pools []models.ResourcePool
	err := r.db.Where("hospital_id = ?", hospitalID).
		Order("resource_type ASC").
		Find(&pools).Error
	return pools, err
}

// CreatePool registers a new resource pool for a hospital
func (r *ResourcePoolRepository) CreatePool(pool *models.ResourcePool) error {
	return r.db.Create(pool).Error
}

// Allocate atomically moves quantity units from available to occupied.
// The availability check and the mutation are a single conditional UPDATE,
// so two concurrent allocations can never both succeed on the last unit:
// the WHERE clause re-verifies available >= quantity under the row lock
// the UPDATE itself takes. Returns the pool row after the mutation.
func (r *ResourcePoolRepository) Allocate(hospitalID uint, resourceType models.ResourceType, quantity int) (*models.ResourcePool, error) {
	res := r.db.Model(&models.ResourcePool{}).
		Where("hospital_id = ? AND resource_type = ? AND available >= ?", hospitalID, resourceType, quantity).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available - ?", quantity),
			"occupied":   gorm.Expr("occupied + ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing pool from a full one.
		pool, err := r.GetPool(hospitalID, resourceType)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: requested %d, available %d", apperrors.ErrInsufficientResources, quantity, pool.Available)
	}
	return r.GetPool(hospitalID, resourceType)
}

// Release atomically returns quantity units from occupied to available.
// Guarded on occupied >= quantity so bookkeeping errors cannot drive the
// occupied counter negative. Returns the pool row after the mutation.
func (r *ResourcePoolRepository) Release(hospitalID uint, resourceType models.ResourceType, quantity int) (*models.ResourcePool, error) {
	res := r.db.Model(&models.ResourcePool{}).
		Where("hospital_id = ? AND resource_type = ? AND occupied >= ?", hospitalID, resourceType, quantity).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available + ?", quantity),
			"occupied":   gorm.Expr("occupied - ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		pool, err := r.GetPool(hospitalID, resourceType)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cannot release %d, only %d occupied", apperrors.ErrValidation, quantity, pool.Occupied)
	}
	return r.GetPool(hospitalID, resourceType)
}

// UpdateCounts sets the pool counters to absolute values. Used by manual
// updates inside a transaction; validation lives in the service.
func (r *ResourcePoolRepository) UpdateCounts(poolID uint, total, available, occupied, reserved, maintenance int) error {
	return r.db.Model(&models.ResourcePool{}).
		Where("id = ?", poolID).
		Updates(map[string]interface{}{
			"total":       total,
			"available":   available,
			"occupied":    occupied,
			"reserved":    reserved,
			"maintenance": maintenance,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// GetUpdatedSince retrieves pools changed after the given timestamp,
// optionally scoped by hospital and resource types. A nil since returns
// all matching pools.
func (r *ResourcePoolRepository) GetUpdatedSince(hospitalID *uint, since *time.Time, resourceTypes []models.ResourceType) ([]models.ResourcePool, error) {
	q := r.db.Model(&models.ResourcePool{})
	if hospitalID != nil {
		q = q.Where("hospital_id = ?", *hospitalID)
	}
	if since != nil {
		q = q.Where("updated_at > ?", *since)
	}
	if len(resourceTypes) > 0 {
		q = q.Where("resource_type IN ?", resourceTypes)
	}
	var pools []models.ResourcePool
	err := q.Order("updated_at ASC").Find(&pools).Error
	return pools, err
}

// CountUpdatedSince is the cheap existence check backing hasChanges.
func (r *ResourcePoolRepository) CountUpdatedSince(hospitalID *uint, since time.Time) (int64, error) {
	q := r.db.Model(&models.ResourcePool{}).Where("updated_at > ?", since)
	if hospitalID != nil {
		q = q.Where("hospital_id = ?", *hospitalID)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
