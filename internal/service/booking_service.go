package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingService orchestrates the booking lifecycle. Every transition runs
// as: precondition check against the state machine, one transaction
// holding {guarded status update + pool mutation + audit entry + history
// entry}, then a best-effort notification after commit. Any failure inside
// the transaction aborts the whole operation; a booking is never left with
// an allocation and no audit trail, or the reverse.
type BookingService struct {
	db             *gorm.DB
	bookingRepo    *repository.BookingRepository
	historyRepo    *repository.BookingHistoryRepository
	poolRepo       *repository.ResourcePoolRepository
	resourceSvc    *ResourceService
	balanceSvc     *BalanceService
	notifier       Notifier
	approvalExpiry time.Duration
}

func NewBookingService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	historyRepo *repository.BookingHistoryRepository,
	poolRepo *repository.ResourcePoolRepository,
	resourceSvc *ResourceService,
	balanceSvc *BalanceService,
	notifier Notifier,
	approvalExpiry time.Duration,
) *BookingService {
	return &BookingService{
		db:             db,
		bookingRepo:    bookingRepo,
		historyRepo:    historyRepo,
		poolRepo:       poolRepo,
		resourceSvc:    resourceSvc,
		balanceSvc:     balanceSvc,
		notifier:       notifier,
		approvalExpiry: approvalExpiry,
	}
}

// CreateBookingInput carries a new booking request. PaymentAmount is the
// opaque value precomputed by the pricing collaborator.
type CreateBookingInput struct {
	UserID             uint
	HospitalID         uint
	ResourceType       models.ResourceType
	PatientName        string
	PatientAge         int
	MedicalCondition   string
	ContactNumber      string
	Urgency            models.Urgency
	ScheduledDate      time.Time
	EstimatedDuration  int
	ResourcesAllocated int
	PaymentAmount      decimal.Decimal
}

// CreateBooking creates a booking in pending state together with its first
// history entry. No resources are touched at creation time.
func (s *BookingService) CreateBooking(input CreateBookingInput) (*models.Booking, error) {
	if input.UserID == 0 || input.HospitalID == 0 {
		return nil, fmt.Errorf("%w: user_id and hospital_id are required", apperrors.ErrValidation)
	}
	if !input.ResourceType.Valid() {
		return nil, fmt.Errorf("%w: unknown resource type %q", apperrors.ErrValidation, input.ResourceType)
	}
	if input.PatientName == "" {
		return nil, fmt.Errorf("%w: patient name is required", apperrors.ErrValidation)
	}
	if input.Urgency == "" {
		input.Urgency = models.UrgencyMedium
	}
	if !input.Urgency.Valid() {
		return nil, fmt.Errorf("%w: unknown urgency %q", apperrors.ErrValidation, input.Urgency)
	}
	if input.ResourcesAllocated <= 0 {
		input.ResourcesAllocated = 1
	}
	if input.EstimatedDuration <= 0 {
		input.EstimatedDuration = 24
	}
	if input.PaymentAmount.IsNegative() {
		return nil, fmt.Errorf("%w: payment amount cannot be negative", apperrors.ErrValidation)
	}

	// Early feedback only; the hospital may still run out before approval.
	if _, err := s.poolRepo.GetPool(input.HospitalID, input.ResourceType); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:             input.UserID,
		HospitalID:         input.HospitalID,
		ResourceType:       input.ResourceType,
		PatientName:        input.PatientName,
		PatientAge:         input.PatientAge,
		MedicalCondition:   input.MedicalCondition,
		ContactNumber:      input.ContactNumber,
		Urgency:            input.Urgency,
		ScheduledDate:      input.ScheduledDate,
		EstimatedDuration:  input.EstimatedDuration,
		ResourcesAllocated: input.ResourcesAllocated,
		PaymentAmount:      input.PaymentAmount,
		PaymentStatus:      models.PaymentPending,
		Status:             models.BookingPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bookingRepo.WithTx(tx).Create(booking); err != nil {
			return err
		}
		return s.historyRepo.WithTx(tx).Create(&models.BookingStatusHistory{
			BookingID: booking.ID,
			OldStatus: nil,
			NewStatus: models.BookingPending,
			ChangedBy: &input.UserID,
			Reason:    "booking created",
		})
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ApproveOptions tunes an approval. A nil ResourcesAllocated keeps the
// quantity requested at creation; AutoAllocateResources defaults to true.
type ApproveOptions struct {
	ResourcesAllocated    *int
	ScheduledDate         *time.Time
	Notes                 string
	AutoAllocateResources *bool
}

// ApproveBooking transitions pending -> approved, allocating pool capacity
// atomically. If allocation fails the booking stays pending and nothing is
// written.
func (s *BookingService) ApproveBooking(bookingID, approvedBy uint, opts ApproveOptions) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(models.BookingApproved) {
		return nil, fmt.Errorf("%w: cannot approve booking in status %s", apperrors.ErrInvalidStateTransition, booking.Status)
	}

	quantity := booking.ResourcesAllocated
	if opts.ResourcesAllocated != nil {
		if *opts.ResourcesAllocated <= 0 {
			return nil, fmt.Errorf("%w: resources_allocated must be positive", apperrors.ErrValidation)
		}
		quantity = *opts.ResourcesAllocated
	}

	autoAllocate := true
	if opts.AutoAllocateResources != nil {
		autoAllocate = *opts.AutoAllocateResources
	}

	if autoAllocate {
		// Early user-facing feedback; the transaction below re-checks.
		check, err := s.resourceSvc.CheckAvailability(booking.HospitalID, booking.ResourceType, quantity)
		if err != nil {
			return nil, err
		}
		if !check.Available {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInsufficientResources, check.Message)
		}
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"approved_by":         approvedBy,
		"approved_at":         now,
		"resources_allocated": quantity,
	}
	if opts.Notes != "" {
		updates["authority_notes"] = opts.Notes
	}
	if opts.ScheduledDate != nil {
		updates["scheduled_date"] = *opts.ScheduledDate
	}
	if booking.ExpiresAt == nil && s.approvalExpiry > 0 {
		updates["expires_at"] = now.Add(s.approvalExpiry)
	}
	// Persisted so complete/cancel know whether there is anything to
	// release: an approval without allocation holds no units.
	updates["resources_held"] = autoAllocate

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.bookingRepo.WithTx(tx).TransitionStatus(bookingID, models.BookingPending, models.BookingApproved, updates)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race against a concurrent transition.
			return fmt.Errorf("%w: booking %d is no longer pending", apperrors.ErrInvalidStateTransition, bookingID)
		}

		if autoAllocate {
			if err := s.resourceSvc.AllocateTx(tx, booking.HospitalID, booking.ResourceType, quantity, bookingID, &approvedBy); err != nil {
				return err
			}
		}

		oldStatus := models.BookingPending
		return s.historyRepo.WithTx(tx).Create(&models.BookingStatusHistory{
			BookingID: bookingID,
			OldStatus: &oldStatus,
			NewStatus: models.BookingApproved,
			ChangedBy: &approvedBy,
			Reason:    "booking approved",
			Notes:     opts.Notes,
		})
	})
	if err != nil {
		return nil, err
	}

	approved, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(NotifyApproved, approved, fmt.Sprintf("%d %s unit(s) reserved", quantity, booking.ResourceType))
	return approved, nil
}

// DeclineBooking transitions pending -> declined. Resources are never
// touched because nothing was allocated while pending.
func (s *BookingService) DeclineBooking(bookingID, declinedBy uint, reason, notes string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a decline reason is required", apperrors.ErrValidation)
	}

	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(models.BookingDeclined) {
		return nil, fmt.Errorf("%w: cannot decline booking in status %s", apperrors.ErrInvalidStateTransition, booking.Status)
	}

	updates := map[string]interface{}{
		"decline_reason": reason,
	}
	if notes != "" {
		updates["authority_notes"] = notes
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.bookingRepo.WithTx(tx).TransitionStatus(bookingID, models.BookingPending, models.BookingDeclined, updates)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: booking %d is no longer pending", apperrors.ErrInvalidStateTransition, bookingID)
		}

		oldStatus := models.BookingPending
		return s.historyRepo.WithTx(tx).Create(&models.BookingStatusHistory{
			BookingID: bookingID,
			OldStatus: &oldStatus,
			NewStatus: models.BookingDeclined,
			ChangedBy: &declinedBy,
			Reason:    reason,
			Notes:     notes,
		})
	})
	if err != nil {
		return nil, err
	}

	declined, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(NotifyDeclined, declined, reason)
	return declined, nil
}

// CompleteBooking transitions approved -> completed, releasing any held
// capacity exactly once. Bookings approved without allocation release
// nothing.
func (s *BookingService) CompleteBooking(bookingID, completedBy uint, notes string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(models.BookingCompleted) {
		return nil, fmt.Errorf("%w: cannot complete booking in status %s", apperrors.ErrInvalidStateTransition, booking.Status)
	}

	updates := map[string]interface{}{}
	if notes != "" {
		updates["authority_notes"] = notes
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.bookingRepo.WithTx(tx).TransitionStatus(bookingID, models.BookingApproved, models.BookingCompleted, updates)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: booking %d is no longer approved", apperrors.ErrInvalidStateTransition, bookingID)
		}

		// The guarded transition above makes this release exactly-once:
		// only the caller that actually moved approved -> completed gets here.
		if booking.ResourcesHeld {
			if err := s.resourceSvc.ReleaseTx(tx, booking.HospitalID, booking.ResourceType,
				booking.ResourcesAllocated, bookingID, &completedBy, ReleaseCompleted); err != nil {
				return err
			}
		}

		oldStatus := models.BookingApproved
		return s.historyRepo.WithTx(tx).Create(&models.BookingStatusHistory{
			BookingID: bookingID,
			OldStatus: &oldStatus,
			NewStatus: models.BookingCompleted,
			ChangedBy: &completedBy,
			Reason:    "booking completed",
			Notes:     notes,
		})
	})
	if err != nil {
		return nil, err
	}

	completed, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(NotifyCompleted, completed, notes)
	return completed, nil
}

// CancelBooking transitions pending or approved -> cancelled. Bookings
// holding an allocation release it; paid bookings are refunded. A nil
// cancelledBy marks a system cancellation (expiry sweep).
func (s *BookingService) CancelBooking(bookingID uint, cancelledBy *uint, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a cancellation reason is required", apperrors.ErrValidation)
	}

	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(models.BookingCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel booking in status %s", apperrors.ErrInvalidStateTransition, booking.Status)
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction: the status, allocation quantity
		// and payment state may all have moved since the precondition check.
		fresh, err := s.bookingRepo.WithTx(tx).GetByID(bookingID)
		if err != nil {
			return err
		}
		fromStatus := fresh.Status
		if !fromStatus.CanTransitionTo(models.BookingCancelled) {
			// A concurrent cancel/complete won the race.
			return fmt.Errorf("%w: booking %d is no longer cancellable (status %s)", apperrors.ErrInvalidStateTransition, bookingID, fromStatus)
		}

		ok, err := s.bookingRepo.WithTx(tx).TransitionStatus(bookingID, fromStatus, models.BookingCancelled,
			map[string]interface{}{"cancel_reason": reason})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: booking %d is no longer %s", apperrors.ErrInvalidStateTransition, bookingID, fromStatus)
		}

		if fresh.ResourcesHeld {
			if err := s.resourceSvc.ReleaseTx(tx, fresh.HospitalID, fresh.ResourceType,
				fresh.ResourcesAllocated, bookingID, cancelledBy, ReleaseCancelled); err != nil {
				return err
			}
		}

		if fresh.PaymentStatus == models.PaymentPaid && fresh.PaymentAmount.IsPositive() {
			if _, err := s.balanceSvc.CreditTx(tx, fresh.UserID, fresh.PaymentAmount,
				models.TxRefundProcessed, &bookingID, cancelledBy,
				fmt.Sprintf("refund for cancelled booking %d", bookingID)); err != nil {
				return err
			}
		}

		return s.historyRepo.WithTx(tx).Create(&models.BookingStatusHistory{
			BookingID: bookingID,
			OldStatus: &fromStatus,
			NewStatus: models.BookingCancelled,
			ChangedBy: cancelledBy,
			Reason:    reason,
		})
	})
	if err != nil {
		return nil, err
	}

	cancelled, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(NotifyCancelled, cancelled, reason)
	return cancelled, nil
}

// CapturePayment debits the booking's payment amount from the user's
// balance and marks the booking paid, all in one transaction. A failed
// debit leaves the booking unpaid with no ledger entry.
func (s *BookingService) CapturePayment(bookingID, userID uint) (*BalanceChange, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("%w: booking %d does not belong to user %d", apperrors.ErrValidation, bookingID, userID)
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: booking %d is already paid", apperrors.ErrValidation, bookingID)
	}
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot pay for a %s booking", apperrors.ErrValidation, booking.Status)
	}
	if !booking.PaymentAmount.IsPositive() {
		return nil, fmt.Errorf("%w: booking %d has no payable amount", apperrors.ErrValidation, bookingID)
	}

	var change *BalanceChange
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.bookingRepo.WithTx(tx).MarkPaid(bookingID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: booking %d is no longer payable", apperrors.ErrValidation, bookingID)
		}

		change, err = s.balanceSvc.DebitTx(tx, userID, booking.PaymentAmount,
			models.TxPaymentReceived, &bookingID, &userID,
			fmt.Sprintf("payment for booking %d", bookingID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// SweepExpired cancels non-terminal bookings past their expiry deadline
// through the normal cancel path. Races with user-initiated cancels are
// benign: the loser's guarded update affects zero rows and is skipped.
// Returns the number of bookings cancelled.
func (s *BookingService) SweepExpired(now time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	expired, err := s.bookingRepo.GetExpired(now, batchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, booking := range expired {
		if _, err := s.CancelBooking(booking.ID, nil, "expired"); err != nil {
			if errors.Is(err, apperrors.ErrInvalidStateTransition) {
				continue
			}
			return swept, err
		}
		swept++
	}
	return swept, nil
}

// GetBooking retrieves a single booking
func (s *BookingService) GetBooking(bookingID uint) (*models.Booking, error) {
	return s.bookingRepo.GetByID(bookingID)
}

// GetUserBookings lists a user's bookings, newest first
func (s *BookingService) GetUserBookings(userID uint, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.bookingRepo.GetByUser(userID, limit, offset)
}

// GetHospitalBookings lists a hospital's bookings, optionally by status
func (s *BookingService) GetHospitalBookings(hospitalID uint, statuses []models.BookingStatus, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.bookingRepo.GetByHospital(hospitalID, statuses, limit, offset)
}

// GetBookingHistory lists the transition path of a booking, oldest first
func (s *BookingService) GetBookingHistory(bookingID uint) ([]models.BookingStatusHistory, error) {
	if _, err := s.bookingRepo.GetByID(bookingID); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByBooking(bookingID)
}

// GetUserHistory lists the transition entries across all of a user's
// bookings, newest first
func (s *BookingService) GetUserHistory(userID uint, limit, offset int) ([]models.BookingStatusHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.historyRepo.GetByUser(userID, limit, offset)
}

// GetTransitionStats aggregates a hospital's transitions per target status
func (s *BookingService) GetTransitionStats(hospitalID uint) ([]repository.StatusCount, error) {
	return s.historyRepo.GetTransitionStats(hospitalID)
}

// CleanupHistory deletes history entries older than the retention window.
// Returns the number of entries removed.
func (s *BookingService) CleanupHistory(olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("%w: retention window must be positive", apperrors.ErrValidation)
	}
	return s.historyRepo.Cleanup(olderThanDays)
}

// notify dispatches the event to the notification collaborator after the
// transaction has committed. Failures are logged and swallowed; they never
// affect the booking decision.
func (s *BookingService) notify(event NotificationEvent, booking *models.Booking, details string) {
	if s.notifier == nil {
		return
	}
	n := Notification{
		Event:           event,
		BookingID:       booking.ID,
		RecipientUserID: booking.UserID,
		Details:         details,
	}
	go func() {
		if err := s.notifier.Notify(context.Background(), n); err != nil {
			log.Printf("notification for booking %d (%s) failed: %v", n.BookingID, n.Event, err)
		}
	}()
}
