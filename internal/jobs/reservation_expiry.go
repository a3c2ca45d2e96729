package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// ItemExpirer marks overdue reserved items as expired
type ItemExpirer interface {
	ExpireOverdueItems(ctx context.Context, limit int) (int, error)
}

// ReservationExpiryProcessor sweeps reserved copies whose expires_on has
// passed and marks them expired in batches
type ReservationExpiryProcessor struct {
	reservations ItemExpirer
	interval     time.Duration
	batchSize    int
	stopCh       chan struct{}
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// NewReservationExpiryProcessor creates a new reservation expiry processor job
func NewReservationExpiryProcessor(reservations ItemExpirer, interval time.Duration) *ReservationExpiryProcessor {
	if interval == 0 {
		interval = 5 * time.Minute // Expiry granularity is a day, so minutes are plenty
	}
	return &ReservationExpiryProcessor{
		reservations: reservations,
		interval:     interval,
		batchSize:    100,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the reservation expiry processor job
func (p *ReservationExpiryProcessor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	log.Printf("Reservation expiry processor started (interval: %v)", p.interval)
}

// Stop gracefully stops the reservation expiry processor job
func (p *ReservationExpiryProcessor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	log.Println("Reservation expiry processor stopped")
}

// run is the main loop
func (p *ReservationExpiryProcessor) run() {
	defer p.wg.Done()

	// Run immediately on start (but with a short delay to let services initialize)
	time.Sleep(5 * time.Second)
	p.processExpirations()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.processExpirations()
		case <-p.stopCh:
			return
		}
	}
}

// processExpirations expires overdue items until a batch comes back short
func (p *ReservationExpiryProcessor) processExpirations() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	total, err := p.drain(ctx)
	if err != nil {
		log.Printf("Error expiring overdue reservation items: %v", err)
		return
	}
	if total > 0 {
		log.Printf("Expired %d overdue reservation items", total)
	}
}

// drain repeats the batch sweep until fewer than a full batch turns up.
// A short batch can still leave stragglers behind (items skipped while
// locked elsewhere); the next tick picks those up.
func (p *ReservationExpiryProcessor) drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := p.reservations.ExpireOverdueItems(ctx, p.batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < p.batchSize {
			return total, nil
		}
	}
}

// RunOnce runs the expiry sweep once (for testing or manual trigger)
func (p *ReservationExpiryProcessor) RunOnce(ctx context.Context) error {
	_, err := p.drain(ctx)
	return err
}

// IsRunning returns whether the processor is running
func (p *ReservationExpiryProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
