// Package store holds the authoritative in-memory donation collection and
// mirrors it to the kv boundary after every mutation. The mirror is best
// effort: a failed write is logged and counted, never surfaced.
package store

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goodworks/donations/internal/audit"
	"github.com/goodworks/donations/internal/donation"
	"github.com/goodworks/donations/internal/kv"
	"github.com/goodworks/donations/internal/metrics"
)

type Options struct {
	KV     kv.Store
	Key    string
	Logger *zap.Logger
	Audit  audit.Recorder
	Delays Delays

	// Test seams; real clock and uuids when nil.
	Now   func() time.Time
	NewID func() string
}

type Store struct {
	mu        sync.Mutex
	donations []donation.Donation

	kv     kv.Store
	key    string
	logger *zap.Logger
	audit  audit.Recorder
	sched  *scheduler

	now   func() time.Time
	newID func() string
}

func New(opts Options) *Store {
	s := &Store{
		kv:     opts.KV,
		key:    opts.Key,
		logger: opts.Logger,
		audit:  opts.Audit,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.sched = newScheduler(opts.Delays, s.applyScheduled, opts.Logger)

	s.donations = s.load()
	metrics.StoreSize.Set(float64(len(s.donations)))
	return s
}

// load reads the persisted collection. Missing or malformed data degrades to
// the seed set; this never fails outward.
func (s *Store) load() []donation.Donation {
	data, err := s.kv.Get(s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("Failed to read persisted donations, using seed set", zap.Error(err))
		}
		return donation.Seed()
	}

	var donations []donation.Donation
	if err := json.Unmarshal(data, &donations); err != nil {
		s.logger.Warn("Persisted donations malformed, using seed set", zap.Error(err))
		return donation.Seed()
	}
	return donations
}

// save mirrors the collection. Callers hold s.mu.
func (s *Store) save() {
	data, err := json.MarshalIndent(s.donations, "", "  ")
	if err == nil {
		err = s.kv.Set(s.key, data)
	}
	if err != nil {
		metrics.PersistFailuresTotal.Inc()
		s.logger.Warn("Failed to persist donations", zap.Error(err))
	}
	metrics.StoreSize.Set(float64(len(s.donations)))
}

type CreateParams struct {
	Kind      string
	Quantity  donation.Quantity
	Recipient string
	Note      string
}

// Create constructs a new donation in status Created and prepends it, newest
// first. It always succeeds.
func (s *Store) Create(params CreateParams) donation.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	d := donation.Donation{
		ID:        s.newID(),
		Recipient: params.Recipient,
		Kind:      params.Kind,
		Quantity:  params.Quantity,
		Status:    donation.StatusCreated,
		CreatedAt: now,
		Timeline: []donation.TimelineEntry{
			{Status: donation.StatusCreated, At: now, Note: params.Note},
		},
	}

	s.donations = append([]donation.Donation{d}, s.donations...)
	s.save()

	metrics.DonationsCreatedTotal.Inc()
	s.audit.Record(audit.Event{
		At:         now,
		Action:     audit.ActionCreated,
		DonationID: d.ID,
		NewStatus:  string(d.Status),
	})
	s.logger.Info("Donation created",
		zap.String("donation_id", d.ID),
		zap.String("recipient", d.Recipient),
		zap.String("kind", d.Kind),
	)
	return d.Clone()
}

// ScheduleAutoAdvance arms the fixed transition sequence for a Created
// donation. Idempotent: the sentinel timeline entry is appended first, so a
// second call finds it and does nothing.
func (s *Store) ScheduleAutoAdvance(id string) {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 || s.donations[i].Status != donation.StatusCreated || s.donations[i].Scheduled() {
		s.mu.Unlock()
		return
	}

	now := s.now()
	s.donations[i].Timeline = append(s.donations[i].Timeline, donation.TimelineEntry{
		Status: s.donations[i].Status,
		At:     now,
		Note:   donation.SentinelNote,
	})
	s.save()
	s.mu.Unlock()

	s.sched.schedule(id)
	s.audit.Record(audit.Event{
		At:         now,
		Action:     audit.ActionScheduled,
		DonationID: id,
	})
}

// ScheduleAll arms auto-advance for every Created donation that is not
// scheduled yet. Run once after load so records created before a restart
// still progress.
func (s *Store) ScheduleAll() {
	s.mu.Lock()
	var ids []string
	for _, d := range s.donations {
		if d.Status == donation.StatusCreated && !d.Scheduled() {
			ids = append(ids, d.ID)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.ScheduleAutoAdvance(id)
	}
}

// Advance applies a manual transition and cancels any pending automatic
// transitions for the record. A missing id or a terminal record is a no-op
// reported through the second return value.
func (s *Store) Advance(id string, to donation.Status, note string) (donation.Donation, bool) {
	s.sched.cancel(id)
	return s.applyAdvance(id, to, note)
}

// applyScheduled is the timer callback path; it must not cancel the record's
// remaining timers.
func (s *Store) applyScheduled(id string, to donation.Status, note string) {
	s.applyAdvance(id, to, note)
}

func (s *Store) applyAdvance(id string, to donation.Status, note string) (donation.Donation, bool) {
	s.mu.Lock()

	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("Advance on unknown donation", zap.String("donation_id", id))
		return donation.Donation{}, false
	}

	old := s.donations[i].Status
	if old.IsTerminal() {
		s.mu.Unlock()
		metrics.TransitionsBlockedTotal.Inc()
		s.logger.Warn("Transition out of terminal state rejected",
			zap.String("donation_id", id),
			zap.String("status", string(old)),
			zap.String("target", string(to)),
		)
		return donation.Donation{}, false
	}

	now := s.now()
	s.donations[i].Timeline = append(s.donations[i].Timeline, donation.TimelineEntry{
		Status: to,
		At:     now,
		Note:   note,
	})
	s.donations[i].Status = to
	if to == donation.StatusCompleted {
		s.donations[i].ReceiptRef = donation.ReceiptRefFor(id)
	}
	s.save()
	out := s.donations[i].Clone()
	s.mu.Unlock()

	metrics.TransitionsTotal.WithLabelValues(string(to)).Inc()
	s.audit.Record(audit.Event{
		At:         now,
		Action:     audit.ActionAdvanced,
		DonationID: id,
		OldStatus:  string(old),
		NewStatus:  string(to),
		Note:       note,
	})
	s.logger.Info("Donation advanced",
		zap.String("donation_id", id),
		zap.String("from", string(old)),
		zap.String("to", string(to)),
	)
	return out, true
}

// Remove deletes a donation and cancels its pending transitions. Absent ids
// are a no-op.
func (s *Store) Remove(id string) bool {
	s.sched.cancel(id)

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.donations = append(s.donations[:i], s.donations[i+1:]...)
	s.save()
	s.mu.Unlock()

	s.audit.Record(audit.Event{
		At:         s.now(),
		Action:     audit.ActionRemoved,
		DonationID: id,
	})
	s.logger.Info("Donation removed", zap.String("donation_id", id))
	return true
}

func (s *Store) Get(id string) (donation.Donation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return donation.Donation{}, false
	}
	return s.donations[i].Clone(), true
}

// index finds id in the collection. Callers hold s.mu.
func (s *Store) index(id string) int {
	for i := range s.donations {
		if s.donations[i].ID == id {
			return i
		}
	}
	return -1
}

type Category string

const (
	CategoryAll       Category = ""
	CategoryPending   Category = "Pending"
	CategoryCompleted Category = "Completed"
	CategoryMoney     Category = "Money"
)

type ListFilter struct {
	Category Category
	Status   donation.Status
	Query    string
	Page     int
	Limit    int
}

// List is a pure projection over the current collection: category/status
// filters, free-text search, then pagination.
func (s *Store) List(filter ListFilter) []donation.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []donation.Donation
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	for _, d := range s.donations {
		if !matches(d, filter, query) {
			continue
		}
		out = append(out, d.Clone())
	}

	if filter.Limit <= 0 {
		return out
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.Limit
	if start >= len(out) {
		return []donation.Donation{}
	}
	end := start + filter.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end]
}

func matches(d donation.Donation, filter ListFilter, query string) bool {
	if filter.Status != "" && d.Status != filter.Status {
		return false
	}
	switch filter.Category {
	case CategoryPending:
		if d.Status == donation.StatusCompleted {
			return false
		}
	case CategoryCompleted:
		if d.Status != donation.StatusCompleted {
			return false
		}
	case CategoryMoney:
		if d.Quantity.Kind != donation.QuantityMoney {
			return false
		}
	}
	if query == "" {
		return true
	}
	haystack := strings.ToLower(d.Recipient + " " + d.Kind + " " + d.Quantity.String())
	return strings.Contains(haystack, query)
}

type Stats struct {
	Total     int              `json:"total"`
	Completed int              `json:"completed"`
	Pending   int              `json:"pending"`
	Items     int              `json:"items"`
	Money     map[string]int64 `json:"money"`
}

// Stats summarizes the collection for the dashboards. Money totals come from
// the typed quantity variant, per currency.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Total: len(s.donations), Money: make(map[string]int64)}
	for _, d := range s.donations {
		switch d.Status {
		case donation.StatusCompleted:
			stats.Completed++
		case donation.StatusCreated:
			stats.Pending++
		}
		if d.Quantity.Kind == donation.QuantityMoney {
			stats.Money[d.Quantity.Currency] += d.Quantity.Amount
		} else {
			stats.Items++
		}
	}
	return stats
}

// Close cancels all pending automatic transitions.
func (s *Store) Close() {
	s.sched.stop()
}
