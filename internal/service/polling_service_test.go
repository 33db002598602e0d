package service

import (
	"testing"
	"time"

	"hospital-resource-booking/internal/models"

	"github.com/shopspring/decimal"
)

func TestGetResourceUpdatesSinceWindow(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)
	env.seedPool(t, 2, models.ResourceICU, 3)

	// A nil since returns everything.
	updates, err := env.polling.GetResourceUpdates(nil, nil, nil)
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if !updates.HasChanges || len(updates.Changes) != 2 {
		t.Errorf("initial feed = %d changes, want 2", len(updates.Changes))
	}
	if updates.SuggestedPollSec != activePollInterval {
		t.Errorf("suggested interval = %d, want %d after changes", updates.SuggestedPollSec, activePollInterval)
	}

	// Nothing changed after the checkpoint.
	since := time.Now().UTC().Add(time.Second)
	updates, err = env.polling.GetResourceUpdates(nil, &since, nil)
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if updates.HasChanges || len(updates.Changes) != 0 {
		t.Errorf("quiet feed = %+v, want no changes", updates)
	}
	if updates.SuggestedPollSec != idlePollInterval {
		t.Errorf("suggested interval = %d, want %d when idle", updates.SuggestedPollSec, idlePollInterval)
	}
}

func TestGetResourceUpdatesScopedByHospitalAndType(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)
	env.seedPool(t, 1, models.ResourceICU, 2)
	env.seedPool(t, 2, models.ResourceBed, 4)

	hospitalID := uint(1)
	updates, err := env.polling.GetResourceUpdates(&hospitalID, nil, []models.ResourceType{models.ResourceICU})
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if len(updates.Changes) != 1 {
		t.Fatalf("scoped feed = %d changes, want 1", len(updates.Changes))
	}
	got := updates.Changes[0]
	if got.HospitalID != 1 || got.ResourceType != models.ResourceICU {
		t.Errorf("scoped change = hospital %d type %s", got.HospitalID, got.ResourceType)
	}
}

func TestGetBookingUpdatesPicksUpTransitions(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)
	booking := env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(500))

	since := time.Now().UTC().Add(time.Second)

	updates, err := env.polling.GetBookingUpdates(nil, &since, nil)
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if updates.HasChanges {
		t.Fatalf("feed before transition = %+v, want quiet", updates)
	}

	// The guarded transition bumps updated_at past the checkpoint.
	time.Sleep(1100 * time.Millisecond)
	if _, err := env.booking.ApproveBooking(booking.ID, 7, ApproveOptions{}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	updates, err = env.polling.GetBookingUpdates(nil, &since, nil)
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if !updates.HasChanges || len(updates.Changes) != 1 {
		t.Fatalf("feed after transition = %d changes, want 1", len(updates.Changes))
	}
	if updates.Changes[0].Status != models.BookingApproved {
		t.Errorf("change status = %s, want approved", updates.Changes[0].Status)
	}

	// Status filter excludes the approved booking.
	updates, err = env.polling.GetBookingUpdates(nil, &since, []models.BookingStatus{models.BookingDeclined})
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if updates.HasChanges {
		t.Errorf("filtered feed = %+v, want quiet", updates)
	}
}

func TestBookingCreatedSameSecondIsPickedUp(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)

	// No sleep: stored timestamps must carry sub-second precision, or a
	// write landing in the same second as the checkpoint is silently lost.
	checkpoint := time.Now().UTC()
	env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(500))

	changed, err := env.polling.HasChanges(nil, checkpoint)
	if err != nil {
		t.Fatalf("has changes: %v", err)
	}
	if !changed {
		t.Error("booking created after the checkpoint was missed")
	}

	updates, err := env.polling.GetBookingUpdates(nil, &checkpoint, nil)
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if !updates.HasChanges || len(updates.Changes) != 1 {
		t.Errorf("feed = %d changes, want 1", len(updates.Changes))
	}
}

func TestHasChangesCoversPoolsAndBookings(t *testing.T) {
	env := newTestEnv(t)
	env.seedPool(t, 1, models.ResourceBed, 5)

	checkpoint := time.Now().UTC().Add(time.Second)
	changed, err := env.polling.HasChanges(nil, checkpoint)
	if err != nil {
		t.Fatalf("has changes: %v", err)
	}
	if changed {
		t.Error("no writes after checkpoint, want false")
	}

	time.Sleep(1100 * time.Millisecond)
	env.seedBooking(t, 10, 1, models.ResourceBed, decimal.NewFromInt(500))

	changed, err = env.polling.HasChanges(nil, checkpoint)
	if err != nil {
		t.Fatalf("has changes: %v", err)
	}
	if !changed {
		t.Error("booking written after checkpoint, want true")
	}

	// Scoped to a different hospital nothing changed.
	otherHospital := uint(2)
	changed, err = env.polling.HasChanges(&otherHospital, checkpoint)
	if err != nil {
		t.Fatalf("has changes: %v", err)
	}
	if changed {
		t.Error("no writes for hospital 2, want false")
	}
}
