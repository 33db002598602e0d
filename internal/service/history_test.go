package service

import (
	"errors"
	"testing"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/pkg/apperrors"

	"github.com/shopspring/decimal"
)

func TestHistoryRejectsForbiddenTransitions(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)
	booking := env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(500))

	// Creation entries must land in pending.
	err := env.historyRepo.Create(&models.BookingStatusHistory{
		BookingID: booking.ID,
		OldStatus: nil,
		NewStatus: models.BookingApproved,
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("creation entry to approved: err = %v, want ErrValidation", err)
	}

	// No entry may record a transition the state machine forbids.
	completed := models.BookingCompleted
	err = env.historyRepo.Create(&models.BookingStatusHistory{
		BookingID: booking.ID,
		OldStatus: &completed,
		NewStatus: models.BookingApproved,
	})
	if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("completed -> approved entry: err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestGetUserHistorySpansBookings(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)
	first := env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(100))
	env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(200))
	env.seedBooking(t, 11, 1, models.ResourceBed, decimal.NewFromInt(300))

	if _, err := env.booking.ApproveBooking(first.ID, 7, ApproveOptions{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Two creations plus one approval for user 10; user 11's entry excluded.
	entries, err := env.booking.GetUserHistory(10, 50, 0)
	if err != nil {
		t.Fatalf("user history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("user history entries = %d, want 3", len(entries))
	}
	for _, e := range entries {
		if e.BookingID == 0 {
			t.Errorf("entry without booking_id: %+v", e)
		}
	}
}

func TestGetTransitionStats(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)
	first := env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(100))
	second := env.seedBooking(t, 11, 1, models.ResourceBed, decimal.NewFromInt(100))

	if _, err := env.booking.ApproveBooking(first.ID, 7, ApproveOptions{}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := env.booking.DeclineBooking(second.ID, 7, "full", ""); err != nil {
		t.Fatalf("decline: %v", err)
	}

	stats, err := env.booking.GetTransitionStats(1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	counts := map[models.BookingStatus]int64{}
	for _, s := range stats {
		counts[s.NewStatus] = s.Count
	}
	if counts[models.BookingPending] != 2 || counts[models.BookingApproved] != 1 || counts[models.BookingDeclined] != 1 {
		t.Errorf("stats = %v, want pending 2, approved 1, declined 1", counts)
	}
}

func TestRetentionCleanup(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)
	booking := env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(100))
	if _, err := env.booking.ApproveBooking(booking.ID, 7, ApproveOptions{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := env.booking.CleanupHistory(0); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("zero retention window: err = %v, want ErrValidation", err)
	}
	if _, err := env.resource.CleanupAuditLog(-7); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("negative retention window: err = %v, want ErrValidation", err)
	}

	// Fresh entries survive a long retention window.
	removed, err := env.booking.CleanupHistory(30)
	if err != nil {
		t.Fatalf("history cleanup: %v", err)
	}
	if removed != 0 {
		t.Errorf("history cleanup removed %d fresh entries, want 0", removed)
	}
	removed, err = env.resource.CleanupAuditLog(30)
	if err != nil {
		t.Fatalf("audit cleanup: %v", err)
	}
	if removed != 0 {
		t.Errorf("audit cleanup removed %d fresh entries, want 0", removed)
	}

	history, _ := env.booking.GetBookingHistory(booking.ID)
	if len(history) != 2 {
		t.Errorf("history after no-op cleanup = %d entries, want 2", len(history))
	}
}
