package service

import (
	"context"
	"log"
	"time"
)

// SweepService is the background worker that cancels bookings past their
// expiry deadline. The interval is a deployment parameter, not a
// correctness requirement: expiry enforcement only needs the sweep to run
// eventually, and every cancellation goes through the normal guarded
// cancel path.
type SweepService struct {
	bookingService *BookingService
	interval       time.Duration
	batchSize      int
}

func NewSweepService(bookingService *BookingService, interval time.Duration, batchSize int) *SweepService {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SweepService{
		bookingService: bookingService,
		interval:       interval,
		batchSize:      batchSize,
	}
}

// Start runs the sweep loop until the context is cancelled
func (w *SweepService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("expiry sweep started - interval %s", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("expiry sweep stopped")
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *SweepService) runOnce() {
	swept, err := w.bookingService.SweepExpired(time.Now().UTC(), w.batchSize)
	if err != nil {
		log.Printf("expiry sweep error: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("expiry sweep cancelled %d booking(s)", swept)
	}
}
