package repository

import (
	"errors"
	"fmt"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

// Create persists a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return &booking, nil
}

// GetByUser retrieves a user's bookings, newest first
func (r *BookingRepository) GetByUser(userID uint, limit, offset int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

// GetByHospital retrieves a hospital's bookings, optionally filtered by status
func (r *BookingRepository) GetByHospital(hospitalID uint, statuses []models.BookingStatus, limit, offset int) ([]models.Booking, error) {
	q := r.db.Where("hospital_id = ?", hospitalID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var bookings []models.Booking
	err := q.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

// TransitionStatus applies a guarded status update: the row only changes
// if it is still in the expected from status, which closes the race
// between two concurrent transitions on the same booking (the loser sees
// zero rows affected). Extra field updates ride along in the same UPDATE.
func (r *BookingRepository) TransitionStatus(bookingID uint, from, to models.BookingStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now().UTC()

	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkPaid flips payment_status from pending to paid. Guarded so a double
// capture affects zero rows on the second attempt, and so a capture racing
// a cancellation loses cleanly: a booking that went terminal between the
// caller's pre-read and this UPDATE is no longer payable.
func (r *BookingRepository) MarkPaid(bookingID uint) (bool, error) {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND payment_status = ? AND status IN ?", bookingID, models.PaymentPending,
			[]models.BookingStatus{models.BookingPending, models.BookingApproved}).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentPaid,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetExpired retrieves non-terminal bookings past their expiry deadline.
// Used by the background sweep.
func (r *BookingRepository) GetExpired(now time.Time, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
		[]models.BookingStatus{models.BookingPending, models.BookingApproved}, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// GetUpdatedSince retrieves bookings changed after the given timestamp,
// optionally scoped by hospital and statuses. A nil since returns all
// matching bookings.
func (r *BookingRepository) GetUpdatedSince(hospitalID *uint, since *time.Time, statuses []models.BookingStatus) ([]models.Booking, error) {
	q := r.db.Model(&models.Booking{})
	if hospitalID != nil {
		q = q.Where("hospital_id = ?", *hospitalID)
	}
	if since != nil {
		q = q.Where("updated_at > ?", *since)
	}
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var bookings []models.Booking
	err := q.Order("updated_at ASC").Find(&bookings).Error
	return bookings, err
}

// CountUpdatedSince is the cheap existence check backing hasChanges.
func (r *BookingRepository) CountUpdatedSince(hospitalID *uint, since time.Time) (int64, error) {
	q := r.db.Model(&models.Booking{}).Where("updated_at > ?", since)
	if hospitalID != nil {
		q = q.Where("hospital_id = ?", *hospitalID)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
