package scheduler

import (
	"context"
	"log"
	"time"

	"docusense-backend/internal/subscription/usecase"
)

// RenewalScheduler runs the subscription renewal sweep on a fixed interval.
type RenewalScheduler struct {
	subUsecase usecase.SubscriptionUsecase
	interval   time.Duration
	stopChan   chan struct{}
}

// NewRenewalScheduler creates a new scheduler.
func NewRenewalScheduler(subUsecase usecase.SubscriptionUsecase, interval time.Duration) *RenewalScheduler {
	return &RenewalScheduler{
		subUsecase: subUsecase,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the scheduler loop.
func (s *RenewalScheduler) Start() {
	log.Printf("[RenewalScheduler] Starting subscription renewal scheduler (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.runSweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSweep()
			case <-s.stopChan:
				log.Println("[RenewalScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *RenewalScheduler) Stop() {
	close(s.stopChan)
}

func (s *RenewalScheduler) runSweep() {
	if _, err := s.subUsecase.RunRenewalSweep(context.Background()); err != nil {
		log.Printf("[RenewalScheduler] Sweep error: %v", err)
	}
}
