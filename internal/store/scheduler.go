package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goodworks/donations/internal/donation"
)

// Delays set how long after scheduling each automatic transition fires.
// Strictly increasing, so a record's own transitions arrive in order.
type Delays struct {
	Accept   time.Duration
	Pickup   time.Duration
	Complete time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Accept:   4 * time.Second,
		Pickup:   7 * time.Second,
		Complete: 11 * time.Second,
	}
}

type advanceFunc func(id string, to donation.Status, note string)

// scheduler owns the pending timers, keyed by donation id, so a manual
// transition or removal can cancel everything still in flight for a record.
type scheduler struct {
	mu      sync.Mutex
	delays  Delays
	advance advanceFunc
	timers  map[string][]*time.Timer
	stopped bool
	logger  *zap.Logger
}

func newScheduler(delays Delays, advance advanceFunc, logger *zap.Logger) *scheduler {
	if delays == (Delays{}) {
		delays = DefaultDelays()
	}
	return &scheduler{
		delays:  delays,
		advance: advance,
		timers:  make(map[string][]*time.Timer),
		logger:  logger,
	}
}

// schedule arms the three transitions for id. A record with timers already
// pending is left alone.
func (sc *scheduler) schedule(id string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.stopped {
		return
	}
	if _, pending := sc.timers[id]; pending {
		return
	}

	steps := []struct {
		after time.Duration
		to    donation.Status
		note  string
	}{
		{sc.delays.Accept, donation.StatusAccepted, "NGO accepted donation"},
		{sc.delays.Pickup, donation.StatusInProgress, "Pickup started"},
		{sc.delays.Complete, donation.StatusCompleted, "Donation received & processed"},
	}

	timers := make([]*time.Timer, 0, len(steps))
	for i, step := range steps {
		step := step
		last := i == len(steps)-1
		timers = append(timers, time.AfterFunc(step.after, func() {
			sc.advance(id, step.to, step.note)
			if last {
				sc.mu.Lock()
				delete(sc.timers, id)
				sc.mu.Unlock()
			}
		}))
	}
	sc.timers[id] = timers

	sc.logger.Debug("Auto-advance scheduled", zap.String("donation_id", id))
}

// cancel stops every pending transition for id.
func (sc *scheduler) cancel(id string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	timers, ok := sc.timers[id]
	if !ok {
		return
	}
	for _, t := range timers {
		t.Stop()
	}
	delete(sc.timers, id)
	sc.logger.Debug("Auto-advance cancelled", zap.String("donation_id", id))
}

// pendingCount reports how many records have timers in flight.
func (sc *scheduler) pendingCount() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.timers)
}

// stop cancels everything and refuses further scheduling.
func (sc *scheduler) stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.stopped = true
	for id, timers := range sc.timers {
		for _, t := range timers {
			t.Stop()
		}
		delete(sc.timers, id)
	}
}
