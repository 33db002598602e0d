package models

import (
	"testing"
	"time"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingPending, BookingApproved, true},
		{BookingPending, BookingDeclined, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingApproved, BookingCompleted, true},
		{BookingApproved, BookingCancelled, true},
		{BookingApproved, BookingDeclined, false},
		{BookingApproved, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingDeclined, BookingApproved, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingApproved, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	terminal := map[BookingStatus]bool{
		BookingPending:   false,
		BookingApproved:  false,
		BookingCompleted: true,
		BookingDeclined:  true,
		BookingCancelled: true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestBookingStatusValid(t *testing.T) {
	for _, status := range []BookingStatus{BookingPending, BookingApproved, BookingCompleted, BookingDeclined, BookingCancelled} {
		if !status.Valid() {
			t.Errorf("Valid(%s) = false, want true", status)
		}
	}
	if BookingStatus("confirmed").Valid() {
		t.Error("Valid(confirmed) = true, want false")
	}
}

func TestBookingExpired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	b := Booking{Status: BookingApproved, ExpiresAt: &past}
	if !b.Expired(now) {
		t.Error("approved booking past deadline should be expired")
	}

	b = Booking{Status: BookingApproved, ExpiresAt: &future}
	if b.Expired(now) {
		t.Error("booking before deadline should not be expired")
	}

	b = Booking{Status: BookingCompleted, ExpiresAt: &past}
	if b.Expired(now) {
		t.Error("terminal booking should never be expired")
	}

	b = Booking{Status: BookingPending}
	if b.Expired(now) {
		t.Error("booking without deadline should never be expired")
	}
}

func TestResourcePoolBalanced(t *testing.T) {
	p := ResourcePool{Total: 10, Available: 4, Occupied: 3, Reserved: 2, Maintenance: 1}
	if !p.Balanced() {
		t.Error("pool with matching counters should be balanced")
	}
	p.Occupied++
	if p.Balanced() {
		t.Error("pool with drifted counters should not be balanced")
	}
}

func TestBookingDetailAccessors(t *testing.T) {
	now := time.Now().UTC()
	approver := uint(7)

	approved := Booking{
		Status:             BookingApproved,
		ApprovedBy:         &approver,
		ApprovedAt:         &now,
		ResourcesAllocated: 2,
		AuthorityNotes:     "bed 12",
	}
	details, ok := approved.ApprovedDetails()
	if !ok {
		t.Fatal("approved booking should expose approval details")
	}
	if details.ApprovedBy != approver || details.ResourcesAllocated != 2 {
		t.Errorf("unexpected approval details: %+v", details)
	}
	if _, ok := approved.DeclinedDetails(); ok {
		t.Error("approved booking must not expose decline details")
	}

	declined := Booking{Status: BookingDeclined, DeclineReason: "no capacity"}
	dd, ok := declined.DeclinedDetails()
	if !ok || dd.Reason != "no capacity" {
		t.Errorf("declined details = %+v, ok = %v", dd, ok)
	}

	cancelled := Booking{Status: BookingCancelled, CancelReason: "expired", ApprovedAt: &now, ResourcesHeld: true}
	cd, ok := cancelled.CancelledDetails()
	if !ok || !cd.WasAllocated {
		t.Errorf("cancelled-after-approval details = %+v, ok = %v", cd, ok)
	}

	cancelledPending := Booking{Status: BookingCancelled, CancelReason: "changed plans"}
	cd, _ = cancelledPending.CancelledDetails()
	if cd.WasAllocated {
		t.Error("cancelled-while-pending must report WasAllocated = false")
	}

	// Approval without allocation never reports held capacity.
	cancelledUnheld := Booking{Status: BookingCancelled, CancelReason: "expired", ApprovedAt: &now}
	cd, _ = cancelledUnheld.CancelledDetails()
	if cd.WasAllocated {
		t.Error("cancelled booking that held no units must report WasAllocated = false")
	}
}
