package service

import (
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
)

// Suggested poll intervals in seconds. Dashboards should poll faster right
// after observing a change and back off during quiet periods; the server
// never pushes.
const (
	activePollInterval = 10
	idlePollInterval   = 30
)

// PollingService is the read-only projection answering "what changed since
// timestamp T" for resource pools and bookings.
type PollingService struct {
	poolRepo    *repository.ResourcePoolRepository
	bookingRepo *repository.BookingRepository
}

func NewPollingService(
	poolRepo *repository.ResourcePoolRepository,
	bookingRepo *repository.BookingRepository,
) *PollingService {
	return &PollingService{
		poolRepo:    poolRepo,
		bookingRepo: bookingRepo,
	}
}

// ResourceUpdates is the change feed for resource pools.
type ResourceUpdates struct {
	HasChanges       bool                  `json:"has_changes"`
	Changes          []models.ResourcePool `json:"changes"`
	CheckedAt        time.Time             `json:"checked_at"`
	SuggestedPollSec int                   `json:"suggested_poll_sec"`
}

// BookingUpdates is the change feed for bookings.
type BookingUpdates struct {
	HasChanges       bool             `json:"has_changes"`
	Changes          []models.Booking `json:"changes"`
	CheckedAt        time.Time        `json:"checked_at"`
	SuggestedPollSec int              `json:"suggested_poll_sec"`
}

// GetResourceUpdates returns pools changed after since (all pools when
// since is nil), optionally scoped by hospital and resource types.
func (s *PollingService) GetResourceUpdates(hospitalID *uint, since *time.Time, resourceTypes []models.ResourceType) (*ResourceUpdates, error) {
	pools, err := s.poolRepo.GetUpdatedSince(hospitalID, since, resourceTypes)
	if err != nil {
		return nil, err
	}
	return &ResourceUpdates{
		HasChanges:       len(pools) > 0,
		Changes:          pools,
		CheckedAt:        time.Now().UTC(),
		SuggestedPollSec: suggestedInterval(len(pools) > 0),
	}, nil
}

// GetBookingUpdates returns bookings changed after since (all bookings
// when since is nil), optionally scoped by hospital and statuses.
func (s *PollingService) GetBookingUpdates(hospitalID *uint, since *time.Time, statuses []models.BookingStatus) (*BookingUpdates, error) {
	bookings, err := s.bookingRepo.GetUpdatedSince(hospitalID, since, statuses)
	if err != nil {
		return nil, err
	}
	return &BookingUpdates{
		HasChanges:       len(bookings) > 0,
		Changes:          bookings,
		CheckedAt:        time.Now().UTC(),
		SuggestedPollSec: suggestedInterval(len(bookings) > 0),
	}, nil
}

// HasChanges is the cheap count-only check for callers that only need a
// boolean before deciding to fetch full data.
func (s *PollingService) HasChanges(hospitalID *uint, since time.Time) (bool, error) {
	pools, err := s.poolRepo.CountUpdatedSince(hospitalID, since)
	if err != nil {
		return false, err
	}
	if pools > 0 {
		return true, nil
	}
	bookings, err := s.bookingRepo.CountUpdatedSince(hospitalID, since)
	if err != nil {
		return false, err
	}
	return bookings > 0, nil
}

func suggestedInterval(sawChanges bool) int {
	if sawChanges {
		return activePollInterval
	}
	return idlePollInterval
}
