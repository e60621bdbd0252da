package delivery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/sirupsen/logrus"
)

// Slot is a half-open delivery window [Start, End).
type Slot struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Policy holds the business rules for offering and accepting delivery times.
type Policy struct {
	Open       TimeOfDay
	Close      TimeOfDay
	Interval   time.Duration
	LeadTime   time.Duration
	Thresholds []int
}

// DefaultPolicy opens 09:00 to 22:00 with 30 minute slots, a 30 minute lead
// and shedding at 5, 10 and 15 active orders.
func DefaultPolicy() Policy {
	return Policy{
		Open:       MustParseTimeOfDay("09:00"),
		Close:      MustParseTimeOfDay("22:00"),
		Interval:   30 * time.Minute,
		LeadTime:   30 * time.Minute,
		Thresholds: []int{5, 10, 15},
	}
}

// NewPolicy builds a Policy from configuration values.
func NewPolicy(open, close string, interval, leadTime time.Duration, thresholds []int) (Policy, error) {
	o, err := ParseTimeOfDay(open)
	if err != nil {
		return Policy{}, fmt.Errorf("opening time: %w", err)
	}
	c, err := ParseTimeOfDay(close)
	if err != nil {
		return Policy{}, fmt.Errorf("closing time: %w", err)
	}
	if !o.Before(c) {
		return Policy{}, fmt.Errorf("opening time %s must be before closing time %s", o, c)
	}
	if interval < time.Minute || interval%time.Minute != 0 {
		return Policy{}, fmt.Errorf("slot interval must be a positive whole number of minutes, got %s", interval)
	}
	if leadTime < 0 {
		return Policy{}, fmt.Errorf("lead time cannot be negative, got %s", leadTime)
	}
	sorted := append([]int(nil), thresholds...)
	sort.Ints(sorted)
	return Policy{Open: o, Close: c, Interval: interval, LeadTime: leadTime, Thresholds: sorted}, nil
}

// Grid returns every acceptable delivery time: Open through Close inclusive,
// stepping by Interval.
func (p Policy) Grid() []TimeOfDay {
	var grid []TimeOfDay
	for t := p.Open; !t.After(p.Close); {
		grid = append(grid, t)
		next, ok := t.Add(p.Interval)
		if !ok {
			break
		}
		t = next
	}
	return grid
}

// Slots returns the full day of windows that fit between Open and Close.
func (p Policy) Slots() []Slot {
	var slots []Slot
	for start := p.Open; ; {
		end, ok := start.Add(p.Interval)
		if !ok || end.After(p.Close) {
			break
		}
		slots = append(slots, Slot{Start: start, End: end})
		start = end
	}
	return slots
}

// ShedCount is the number of earliest slots withheld under load: one per
// threshold reached.
func (p Policy) ShedCount(activeOrders int) int {
	shed := 0
	for _, threshold := range p.Thresholds {
		if activeOrders >= threshold {
			shed++
		}
	}
	return shed
}

// AvailableSlots lists today's slots that start strictly after now plus the
// lead time, minus the slots shed for the current load.
func (p Policy) AvailableSlots(now time.Time, activeOrders int) []Slot {
	earliest := now.Add(p.LeadTime)
	upcoming := make([]Slot, 0)
	for _, slot := range p.Slots() {
		if slot.Start.On(now).After(earliest) {
			upcoming = append(upcoming, slot)
		}
	}

	shed := p.ShedCount(activeOrders)
	if shed >= len(upcoming) {
		return []Slot{}
	}
	return upcoming[shed:]
}

// ValidateRequestedTime checks format, lead time and grid alignment, in that
// order, and returns the parsed time when all pass.
func (p Policy) ValidateRequestedTime(candidate string, now time.Time) (TimeOfDay, error) {
	requested, err := ParseTimeOfDay(candidate)
	if err != nil {
		return TimeOfDay{}, apperrors.NewValidationError("invalid delivery time",
			apperrors.ValidationDetail{Field: "delivery_time", Message: "must use HH:MM format"})
	}

	earliest := now.Add(p.LeadTime)
	if !requested.On(now).After(earliest) {
		return TimeOfDay{}, apperrors.NewValidationError("delivery time is too soon",
			apperrors.ValidationDetail{
				Field:   "delivery_time",
				Message: fmt.Sprintf("must be later than %s", earliest.Format(timeOfDayLayout)),
			})
	}

	for _, t := range p.Grid() {
		if t == requested {
			return requested, nil
		}
	}
	return TimeOfDay{}, apperrors.NewValidationError("delivery time is outside the delivery schedule",
		apperrors.ValidationDetail{
			Field: "delivery_time",
			Message: fmt.Sprintf("must be between %s and %s in steps of %d minutes",
				p.Open, p.Close, int(p.Interval/time.Minute)),
		})
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall time in the business timezone.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// LoadCounter reports how many orders are currently in flight.
type LoadCounter interface {
	CountActiveOrders(ctx context.Context) (int64, error)
}

// Scheduler binds a Policy to a clock and the live order load.
type Scheduler struct {
	policy Policy
	clock  Clock
	load   LoadCounter
}

// NewScheduler returns a Scheduler reading time from clock and load from load.
func NewScheduler(policy Policy, clock Clock, load LoadCounter) *Scheduler {
	return &Scheduler{policy: policy, clock: clock, load: load}
}

// Policy returns the configured slot rules.
func (s *Scheduler) Policy() Policy { return s.policy }

// Now reports the scheduler clock's current time.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// AvailableSlots offers the slots still open at the current load.
func (s *Scheduler) AvailableSlots(ctx context.Context) ([]Slot, error) {
	active, err := s.load.CountActiveOrders(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count active orders", err)
	}
	now := s.clock.Now()
	slots := s.policy.AvailableSlots(now, int(active))
	logrus.WithFields(logrus.Fields{
		"active_orders": active,
		"shed":          s.policy.ShedCount(int(active)),
		"offered":       len(slots),
	}).Debug("Computed delivery slots")
	return slots, nil
}

// ValidateRequestedTime checks candidate against the policy at the current time.
func (s *Scheduler) ValidateRequestedTime(candidate string) (TimeOfDay, error) {
	return s.policy.ValidateRequestedTime(candidate, s.clock.Now())
}
