package donation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusCreated    Status = "Created"
	StatusAccepted   Status = "Accepted"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusRejected   Status = "Rejected"
)

// IsTerminal reports whether no further transitions are defined from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusAccepted, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

type QuantityKind string

const (
	QuantityCount QuantityKind = "count"
	QuantityMoney QuantityKind = "money"
)

// Quantity is a tagged variant: a counted unit ("3 bags") or a money amount
// ("₹500"). The variant is fixed at creation time so aggregate totals never
// re-parse free text.
type Quantity struct {
	Kind     QuantityKind `json:"kind"`
	Unit     string       `json:"unit,omitempty"`
	Currency string       `json:"currency,omitempty"`
	Amount   int64        `json:"amount"`
}

func Count(amount int64, unit string) Quantity {
	return Quantity{Kind: QuantityCount, Unit: unit, Amount: amount}
}

func Money(amount int64, currency string) Quantity {
	return Quantity{Kind: QuantityMoney, Currency: currency, Amount: amount}
}

func (q Quantity) IsZero() bool {
	return q.Kind == ""
}

func (q Quantity) String() string {
	if q.Kind == QuantityMoney {
		if sym, ok := currencySymbols[q.Currency]; ok {
			return sym + strconv.FormatInt(q.Amount, 10)
		}
		return fmt.Sprintf("%d %s", q.Amount, q.Currency)
	}
	if q.Unit == "" {
		return strconv.FormatInt(q.Amount, 10)
	}
	return fmt.Sprintf("%d %s", q.Amount, q.Unit)
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
}

var symbolCurrencies = map[rune]string{
	'₹': "INR",
	'$': "USD",
	'€': "EUR",
}

// ParseQuantity turns free-text quantity input into the tagged variant.
// Accepted forms: "₹500" (currency symbol prefix), "500 INR", "3 bags",
// "15 meals", bare "3". Anything else fails.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, fmt.Errorf("empty quantity")
	}

	for sym, code := range symbolCurrencies {
		if strings.HasPrefix(s, string(sym)) {
			raw := strings.ReplaceAll(strings.TrimPrefix(s, string(sym)), ",", "")
			amount, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return Quantity{}, fmt.Errorf("invalid money amount %q: %w", s, err)
			}
			return Money(amount, code), nil
		}
	}

	fields := strings.Fields(s)
	amount, err := strconv.ParseInt(strings.ReplaceAll(fields[0], ",", ""), 10, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	if len(fields) == 1 {
		return Count(amount, ""), nil
	}
	unit := strings.Join(fields[1:], " ")
	if code := strings.ToUpper(unit); len(unit) == 3 && currencySymbols[code] != "" {
		return Money(amount, code), nil
	}
	return Count(amount, unit), nil
}

// SentinelNote marks a timeline entry recording that auto-advance has been
// scheduled for the record. It is not a status change.
const SentinelNote = "auto-scheduled"

type TimelineEntry struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
	Note   string    `json:"note,omitempty"`
}

func (e TimelineEntry) IsSentinel() bool {
	return e.Note == SentinelNote
}

type Donation struct {
	ID         string          `json:"id"`
	Recipient  string          `json:"recipient"`
	Kind       string          `json:"kind"`
	Quantity   Quantity        `json:"quantity"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ReceiptRef string          `json:"receipt_ref,omitempty"`
	Timeline   []TimelineEntry `json:"timeline"`
}

// Scheduled reports whether auto-advance has already been scheduled for d.
func (d Donation) Scheduled() bool {
	for _, e := range d.Timeline {
		if e.IsSentinel() {
			return true
		}
	}
	return false
}

// ReceiptRefFor derives the receipt reference for a completed donation.
func ReceiptRefFor(id string) string {
	return "/receipts/" + id + ".pdf"
}

// Clone returns a deep copy so callers can never mutate the store's timeline.
func (d Donation) Clone() Donation {
	out := d
	out.Timeline = make([]TimelineEntry, len(d.Timeline))
	copy(out.Timeline, d.Timeline)
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Seed returns the fixed fallback dataset used when no valid persisted data
// exists. Newest first, matching store ordering.
func Seed() []Donation {
	return []Donation{
		{
			ID:        "m3",
			Recipient: "HelpHands",
			Kind:      "Money",
			Quantity:  Money(500, "INR"),
			Status:    StatusCreated,
			CreatedAt: date(2025, 9, 20),
			Timeline: []TimelineEntry{
				{Status: StatusCreated, At: date(2025, 9, 20)},
			},
		},
		{
			ID:        "m2",
			Recipient: "CareForAll",
			Kind:      "Food",
			Quantity:  Count(15, "meals"),
			Status:    StatusInProgress,
			CreatedAt: date(2025, 9, 12),
			Timeline: []TimelineEntry{
				{Status: StatusCreated, At: date(2025, 9, 12)},
				{Status: StatusAccepted, At: date(2025, 9, 13)},
				{Status: StatusInProgress, At: date(2025, 9, 14)},
			},
		},
		{
			ID:         "m1",
			Recipient:  "Seva Foundation",
			Kind:       "Cloth",
			Quantity:   Count(3, "bags"),
			Status:     StatusCompleted,
			CreatedAt:  date(2025, 9, 5),
			ReceiptRef: ReceiptRefFor("m1"),
			Timeline: []TimelineEntry{
				{Status: StatusCreated, At: date(2025, 9, 1)},
				{Status: StatusAccepted, At: date(2025, 9, 2)},
				{Status: StatusCompleted, At: date(2025, 9, 5)},
			},
		},
	}
}
