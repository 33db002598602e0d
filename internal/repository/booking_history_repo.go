package repository

import (
	"fmt"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"gorm.io/gorm"
)

type BookingHistoryRepository struct {
	db *gorm.DB
}

func NewBookingHistoryRepo(db *gorm.DB) *BookingHistoryRepository {
	return &BookingHistoryRepository{db: db}
}

// WithTx returns a repository bound to the given transaction so history
// entries stay in lockstep with the status they record.
func (r *BookingHistoryRepository) WithTx(tx *gorm.DB) *BookingHistoryRepository {
	return &BookingHistoryRepository{db: tx}
}

// Create appends a status history entry. The transition is checked against
// the state machine here as a last line of defense: no entry may record a
// transition the lifecycle forbids.
func (r *BookingHistoryRepository) Create(entry *models.BookingStatusHistory) error {
	if entry.BookingID == 0 {
		return fmt.Errorf("%w: history entry requires booking_id", apperrors.ErrValidation)
	}
	if !entry.NewStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, entry.NewStatus)
	}
	if entry.OldStatus == nil {
		if entry.NewStatus != models.BookingPending {
			return fmt.Errorf("%w: bookings are created in pending, not %q", apperrors.ErrValidation, entry.NewStatus)
		}
	} else if !entry.OldStatus.CanTransitionTo(entry.NewStatus) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStateTransition, *entry.OldStatus, entry.NewStatus)
	}
	return r.db.Create(entry).Error
}

// GetByBooking retrieves the full transition path of a booking, oldest first
func (r *BookingHistoryRepository) GetByBooking(bookingID uint) ([]models.BookingStatusHistory, error) {
	var entries []models.BookingStatusHistory
	err := r.db.Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// GetByUser retrieves history entries across all of a user's bookings,
// newest first.
func (r *BookingHistoryRepository) GetByUser(userID uint, limit, offset int) ([]models.BookingStatusHistory, error) {
	var entries []models.BookingStatusHistory
	err := r.db.
		Joins("INNER JOIN bookings ON bookings.id = booking_status_histories.booking_id").
		Where("bookings.user_id = ?", userID).
		Order("booking_status_histories.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

// StatusCount is one row of the per-status aggregate.
type StatusCount struct {
	NewStatus models.BookingStatus `json:"status"`
	Count     int64                `json:"count"`
}

// GetTransitionStats aggregates entry counts per resulting status for a hospital
func (r *BookingHistoryRepository) GetTransitionStats(hospitalID uint) ([]StatusCount, error) {
	var stats []StatusCount
	err := r.db.Model(&models.BookingStatusHistory{}).
		Select("booking_status_histories.new_status, COUNT(*) as count").
		Joins("INNER JOIN bookings ON bookings.id = booking_status_histories.booking_id").
		Where("bookings.hospital_id = ?", hospitalID).
		Group("booking_status_histories.new_status").
		Find(&stats).Error
	return stats, err
}

// Cleanup deletes entries older than the retention window. Explicit
// maintenance operation only.
func (r *BookingHistoryRepository) Cleanup(olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.BookingStatusHistory{})
	return res.RowsAffected, res.Error
}
