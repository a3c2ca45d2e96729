package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// StateTransitioner advances the opening schedule to the current instant
type StateTransitioner interface {
	ProcessTransitions(ctx context.Context) (started, ended int, err error)
}

// StateTransitionProcessor runs scheduled opening-state transitions
// - Ends planned states whose ends_on has passed
// - Starts planned states whose starts_on has been reached
type StateTransitionProcessor struct {
	states   StateTransitioner
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewStateTransitionProcessor creates a new state transition processor job
func NewStateTransitionProcessor(states StateTransitioner, interval time.Duration) *StateTransitionProcessor {
	if interval == 0 {
		interval = 30 * time.Second // Default; door changes should not run visibly late
	}
	return &StateTransitionProcessor{
		states:   states,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the state transition processor job
func (p *StateTransitionProcessor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	log.Printf("State transition processor started (interval: %v)", p.interval)
}

// Stop gracefully stops the state transition processor job
func (p *StateTransitionProcessor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	log.Println("State transition processor stopped")
}

// run is the main loop
func (p *StateTransitionProcessor) run() {
	defer p.wg.Done()

	// Run immediately on start (but with a short delay to let services initialize)
	time.Sleep(5 * time.Second)
	p.processTransitions()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.processTransitions()
		case <-p.stopCh:
			return
		}
	}
}

// processTransitions applies all due opening-state transitions
func (p *StateTransitionProcessor) processTransitions() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	started, ended, err := p.states.ProcessTransitions(ctx)
	if err != nil {
		log.Printf("Error processing state transitions: %v", err)
		return
	}
	if started > 0 || ended > 0 {
		log.Printf("Opening schedule advanced: %d started, %d ended", started, ended)
	}
}

// RunOnce runs the transition processing once (for testing or manual trigger)
func (p *StateTransitionProcessor) RunOnce(ctx context.Context) error {
	_, _, err := p.states.ProcessTransitions(ctx)
	return err
}

// IsRunning returns whether the processor is running
func (p *StateTransitionProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
