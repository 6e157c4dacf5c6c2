// Package audit carries a best-effort trail of store mutations to Kafka.
// Delivery never blocks or fails the mutation that produced the event.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goodworks/donations/internal/kafka"
)

type Event struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Action     string    `json:"action"`
	DonationID string    `json:"donation_id"`
	OldStatus  string    `json:"old_status,omitempty"`
	NewStatus  string    `json:"new_status,omitempty"`
	Note       string    `json:"note,omitempty"`
}

const (
	ActionCreated   = "created"
	ActionScheduled = "scheduled"
	ActionAdvanced  = "advanced"
	ActionRemoved   = "removed"
)

// Recorder accepts store mutation events.
type Recorder interface {
	Record(event Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(Event) {}

type Config struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	Topic         string
}

// Manager batches events and hands batches to a worker pool that publishes
// them through a kafka producer.
type Manager struct {
	cfg      Config
	producer kafka.Producer
	logger   *zap.Logger

	inputChan  chan Event
	batchChan  chan []Event
	shutdownCh chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

func NewManager(cfg Config, producer kafka.Producer, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:        cfg,
		producer:   producer,
		logger:     logger,
		inputChan:  make(chan Event, cfg.Workers*cfg.BatchSize*2),
		batchChan:  make(chan []Event, cfg.Workers*2),
		shutdownCh: make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.logger.Info("Starting audit manager",
		zap.Int("workers", m.cfg.Workers),
		zap.Int("batch_size", m.cfg.BatchSize),
	)

	m.wg.Add(1)
	go m.runAggregator(ctx)

	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.runWorker(ctx, i)
	}
}

// Record enqueues an event. If the pipeline is saturated or already shut
// down, the event is logged locally and dropped.
func (m *Manager) Record(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	select {
	case m.inputChan <- event:
	case <-m.shutdownCh:
		m.logLocal(event)
	default:
		m.logLocal(event)
	}
}

func (m *Manager) Shutdown(ctx context.Context) {
	m.once.Do(func() {
		m.logger.Info("Initiating audit manager shutdown")
		close(m.shutdownCh)

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			m.logger.Info("Audit manager shutdown completed")
		case <-ctx.Done():
			m.logger.Warn("Audit manager shutdown interrupted")
		}
	})
}

func (m *Manager) runAggregator(ctx context.Context) {
	defer m.wg.Done()

	var (
		batch    []Event
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		if len(batch) > 0 {
			m.dispatchBatch(batch)
		}
		close(m.batchChan)
	}()

	for {
		select {
		case event := <-m.inputChan:
			batch = append(batch, event)
			if len(batch) >= m.cfg.BatchSize {
				m.dispatchBatch(batch)
				batch = nil
				timeoutC = nil
			} else if len(batch) == 1 {
				timer = time.NewTimer(m.cfg.FlushInterval)
				timeoutC = timer.C
			}

		case <-timeoutC:
			m.dispatchBatch(batch)
			batch = nil
			timeoutC = nil

		case <-ctx.Done():
			return

		case <-m.shutdownCh:
			return
		}
	}
}

func (m *Manager) dispatchBatch(batch []Event) {
	batchCopy := make([]Event, len(batch))
	copy(batchCopy, batch)

	select {
	case m.batchChan <- batchCopy:
	default:
		for _, event := range batchCopy {
			m.logLocal(event)
		}
	}
}

func (m *Manager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()

	drain := func() {
		for {
			select {
			case batch, ok := <-m.batchChan:
				if !ok {
					return
				}
				m.publishBatch(ctx, batch)
			default:
				return
			}
		}
	}

	for {
		select {
		case batch, ok := <-m.batchChan:
			if !ok {
				m.logger.Debug("Audit worker exiting", zap.Int("worker", id))
				return
			}
			m.publishBatch(ctx, batch)
		case <-ctx.Done():
			drain()
			m.logger.Debug("Audit worker exiting", zap.Int("worker", id))
			return
		}
	}
}

func (m *Manager) publishBatch(ctx context.Context, batch []Event) {
	for _, event := range batch {
		payload, err := json.Marshal(event)
		if err != nil {
			m.logger.Error("Failed to marshal audit event", zap.Error(err))
			continue
		}
		// Keyed by donation id so one record's events stay ordered.
		if err := m.producer.SendMessage(ctx, m.cfg.Topic, []byte(event.DonationID), payload); err != nil {
			m.logger.Warn("Failed to publish audit event",
				zap.String("donation_id", event.DonationID),
				zap.Error(err),
			)
		}
	}
}

func (m *Manager) logLocal(event Event) {
	m.logger.Info("audit event (local fallback)",
		zap.String("action", event.Action),
		zap.String("donation_id", event.DonationID),
		zap.String("old_status", event.OldStatus),
		zap.String("new_status", event.NewStatus),
	)
}
