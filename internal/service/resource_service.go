package service

import (
	"errors"
	"fmt"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/pkg/apperrors"

	"gorm.io/gorm"
)

// ResourceService owns the per-hospital resource pools: availability
// checks, the atomic allocate/release mutations and authority-driven
// manual corrections. Every counter mutation writes exactly one audit
// entry in the same transaction.
type ResourceService struct {
	db        *gorm.DB
	poolRepo  *repository.ResourcePoolRepository
	auditRepo *repository.ResourceAuditRepository
}

func NewResourceService(
	db *gorm.DB,
	poolRepo *repository.ResourcePoolRepository,
	auditRepo *repository.ResourceAuditRepository,
) *ResourceService {
	return &ResourceService{
		db:        db,
		poolRepo:  poolRepo,
		auditRepo: auditRepo,
	}
}

// AvailabilityResult is the side-effect-free answer to "could quantity
// units be allocated right now". It is advisory only: the allocation
// itself re-checks atomically.
type AvailabilityResult struct {
	Available        bool   `json:"available"`
	CurrentAvailable int    `json:"current_available"`
	Message          string `json:"message"`
}

// CheckAvailability reports whether the pool could currently satisfy the
// requested quantity. Never errors for a missing pool; that case is
// reported as unavailable with a message.
func (s *ResourceService) CheckAvailability(hospitalID uint, resourceType models.ResourceType, quantity int) (*AvailabilityResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}

	pool, err := s.poolRepo.GetPool(hospitalID, resourceType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &AvailabilityResult{
				Available: false,
				Message:   fmt.Sprintf("hospital %d does not offer resource type %s", hospitalID, resourceType),
			}, nil
		}
		return nil, err
	}

	if pool.Available < quantity {
		return &AvailabilityResult{
			Available:        false,
			CurrentAvailable: pool.Available,
			Message:          fmt.Sprintf("only %d of %d requested %s units available", pool.Available, quantity, resourceType),
		}, nil
	}

	return &AvailabilityResult{
		Available:        true,
		CurrentAvailable: pool.Available,
		Message:          "requested quantity is available",
	}, nil
}

// AllocateTx moves quantity units from available to occupied and writes
// the matching booking_approved audit entry, all inside the caller's
// transaction. Fails with ErrInsufficientResources when the atomic
// re-check finds too few units; the caller must then abort the whole
// transaction.
func (s *ResourceService) AllocateTx(tx *gorm.DB, hospitalID uint, resourceType models.ResourceType, quantity int, bookingID uint, actor *uint) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}

	pool, err := s.poolRepo.WithTx(tx).Allocate(hospitalID, resourceType, quantity)
	if err != nil {
		return err
	}

	// The conditional UPDATE already applied the delta; the pre-mutation
	// value is recovered exactly from the post-mutation row.
	return s.auditRepo.WithTx(tx).Create(&models.ResourceAuditLog{
		HospitalID:   hospitalID,
		ResourceType: resourceType,
		ChangeType:   models.ChangeBookingApproved,
		OldValue:     pool.Available + quantity,
		NewValue:     pool.Available,
		Quantity:     -quantity,
		BookingID:    &bookingID,
		ChangedBy:    actor,
		Reason:       fmt.Sprintf("allocated %d %s unit(s) for booking %d", quantity, resourceType, bookingID),
	})
}

// ReleaseCause distinguishes why an allocation returns to the pool.
type ReleaseCause string

const (
	ReleaseCompleted ReleaseCause = "completed"
	ReleaseCancelled ReleaseCause = "cancelled"
)

// ReleaseTx returns quantity units from occupied to available and writes
// the matching audit entry inside the caller's transaction. Callers must
// invoke it exactly once per allocation; the booking state machine's
// guarded terminal transitions are what guarantee that.
func (s *ResourceService) ReleaseTx(tx *gorm.DB, hospitalID uint, resourceType models.ResourceType, quantity int, bookingID uint, actor *uint, cause ReleaseCause) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}

	changeType := models.ChangeBookingCompleted
	if cause == ReleaseCancelled {
		changeType = models.ChangeBookingCancelled
	}

	pool, err := s.poolRepo.WithTx(tx).Release(hospitalID, resourceType, quantity)
	if err != nil {
		return err
	}

	return s.auditRepo.WithTx(tx).Create(&models.ResourceAuditLog{
		HospitalID:   hospitalID,
		ResourceType: resourceType,
		ChangeType:   changeType,
		OldValue:     pool.Available - quantity,
		NewValue:     pool.Available,
		Quantity:     quantity,
		BookingID:    &bookingID,
		ChangedBy:    actor,
		Reason:       fmt.Sprintf("released %d %s unit(s), booking %d %s", quantity, resourceType, bookingID, cause),
	})
}

// PoolCounts carries the absolute counter values for a manual update.
type PoolCounts struct {
	Total       int `json:"total" binding:"min=0"`
	Available   int `json:"available" binding:"min=0"`
	Occupied    int `json:"occupied" binding:"min=0"`
	Reserved    int `json:"reserved" binding:"min=0"`
	Maintenance int `json:"maintenance" binding:"min=0"`
}

// ManualUpdate lets hospital staff correct the pool counters. The new
// values must satisfy the conservation invariant; the change and its
// audit entry commit together.
func (s *ResourceService) ManualUpdate(hospitalID uint, resourceType models.ResourceType, counts PoolCounts, actor uint, reason string) (*models.ResourcePool, error) {
	if counts.Total < 0 || counts.Available < 0 || counts.Occupied < 0 || counts.Reserved < 0 || counts.Maintenance < 0 {
		return nil, fmt.Errorf("%w: counters must be non-negative", apperrors.ErrValidation)
	}
	if counts.Total != counts.Available+counts.Occupied+counts.Reserved+counts.Maintenance {
		return nil, fmt.Errorf("%w: total %d does not equal available+occupied+reserved+maintenance",
			apperrors.ErrValidation, counts.Total)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: manual updates require a reason", apperrors.ErrValidation)
	}

	var updated *models.ResourcePool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		pool, err := s.poolRepo.WithTx(tx).GetPool(hospitalID, resourceType)
		if err != nil {
			return err
		}

		if err := s.poolRepo.WithTx(tx).UpdateCounts(pool.ID,
			counts.Total, counts.Available, counts.Occupied, counts.Reserved, counts.Maintenance); err != nil {
			return err
		}

		if err := s.auditRepo.WithTx(tx).Create(&models.ResourceAuditLog{
			HospitalID:   hospitalID,
			ResourceType: resourceType,
			ChangeType:   models.ChangeManualUpdate,
			OldValue:     pool.Available,
			NewValue:     counts.Available,
			Quantity:     counts.Available - pool.Available,
			ChangedBy:    &actor,
			Reason:       reason,
		}); err != nil {
			return err
		}

		updated, err = s.poolRepo.WithTx(tx).GetPool(hospitalID, resourceType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RegisterPool creates the counter row when a hospital registers a new
// resource type. All units start available.
func (s *ResourceService) RegisterPool(hospitalID uint, resourceType models.ResourceType, total int, actor uint) (*models.ResourcePool, error) {
	if !resourceType.Valid() {
		return nil, fmt.Errorf("%w: unknown resource type %q", apperrors.ErrValidation, resourceType)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: total must be non-negative", apperrors.ErrValidation)
	}

	pool := &models.ResourcePool{
		HospitalID:   hospitalID,
		ResourceType: resourceType,
		Total:        total,
		Available:    total,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.poolRepo.WithTx(tx).CreatePool(pool); err != nil {
			return err
		}
		return s.auditRepo.WithTx(tx).Create(&models.ResourceAuditLog{
			HospitalID:   hospitalID,
			ResourceType: resourceType,
			ChangeType:   models.ChangeSystemAdjustment,
			OldValue:     0,
			NewValue:     total,
			Quantity:     total,
			ChangedBy:    &actor,
			Reason:       fmt.Sprintf("resource type %s registered with %d unit(s)", resourceType, total),
		})
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// GetPools lists all pools of a hospital
func (s *ResourceService) GetPools(hospitalID uint) ([]models.ResourcePool, error) {
	return s.poolRepo.GetPoolsByHospital(hospitalID)
}

// GetAuditLog lists a hospital's pool mutations, newest first
func (s *ResourceService) GetAuditLog(hospitalID uint, resourceType *models.ResourceType, limit, offset int) ([]models.ResourceAuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.auditRepo.GetByHospital(hospitalID, resourceType, limit, offset)
}

// GetAuditStats aggregates a hospital's mutations per change type
func (s *ResourceService) GetAuditStats(hospitalID uint) ([]repository.ChangeTypeCount, error) {
	return s.auditRepo.GetChangeStats(hospitalID)
}

// CleanupAuditLog deletes audit entries older than the retention window.
// Returns the number of entries removed.
func (s *ResourceService) CleanupAuditLog(olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("%w: retention window must be positive", apperrors.ErrValidation)
	}
	return s.auditRepo.Cleanup(olderThanDays)
}
