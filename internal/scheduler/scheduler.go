// Package scheduler advances persisted messages through their delivery
// statuses on a timer.
//
// Each message owns one chain of steps. Steps of a chain run strictly one
// after the other in delay order, and a chain can be cancelled at any time
// by message id. A step that fails to write is logged, counted and dropped;
// the rest of the chain still runs.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/notify"
)

// Step moves a message to Status once After has elapsed since scheduling.
type Step struct {
	After  time.Duration
	Status domain.Status
}

// DefaultSteps returns the delivered/read pipeline.
func DefaultSteps(deliveredAfter, readAfter time.Duration) []Step {
	return []Step{
		{After: deliveredAfter, Status: domain.StatusDelivered},
		{After: readAfter, Status: domain.StatusRead},
	}
}

// AdvanceFunc persists a status change. It must treat an unknown id as a
// no-op.
type AdvanceFunc func(ctx context.Context, id int64, status domain.Status) error

// Publisher receives an event after every successful step.
type Publisher interface {
	Publish(notify.Event)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger used for failed steps.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithSteps sets the chain used when Schedule is called without steps.
func WithSteps(steps []Step) Option {
	return func(s *Scheduler) {
		if len(steps) > 0 {
			s.steps = steps
		}
	}
}

// WithWriteTimeout bounds each status write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

type chain struct {
	steps []Step
	next  int
	timer Timer
}

// Scheduler runs per-message status chains.
type Scheduler struct {
	advance AdvanceFunc
	pub     Publisher
	clock   Clock
	log     zerolog.Logger
	steps   []Step
	timeout time.Duration

	mu      sync.Mutex
	chains  map[int64]*chain
	stopped bool
	running sync.WaitGroup
}

// New returns a Scheduler that writes through advance and reports to pub.
// pub may be nil.
func New(advance AdvanceFunc, pub Publisher, opts ...Option) *Scheduler {
	s := &Scheduler{
		advance: advance,
		pub:     pub,
		clock:   RealClock{},
		log:     log.Logger,
		steps:   DefaultSteps(time.Second, 3*time.Second),
		timeout: 5 * time.Second,
		chains:  make(map[int64]*chain),
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Schedule starts the chain for message id. With no steps the configured
// default chain is used. A chain already pending for id is replaced. It
// reports false once the scheduler is stopped.
func (s *Scheduler) Schedule(id int64, steps []Step) bool {
	if len(steps) == 0 {
		steps = s.steps
	}
	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].After < ordered[j].After })

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if old, ok := s.chains[id]; ok {
		old.timer.Stop()
	} else {
		pendingChains.Inc()
	}

	c := &chain{steps: ordered}
	s.chains[id] = c
	c.timer = s.clock.AfterFunc(ordered[0].After, func() { s.fire(id, c) })
	return true
}

// Cancel drops the pending steps of message id. It reports whether a chain
// was pending. A step already writing completes, but its event is not
// published.
func (s *Scheduler) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chains[id]
	if !ok {
		return false
	}
	c.timer.Stop()
	delete(s.chains, id)
	pendingChains.Dec()
	return true
}

// Pending returns the number of steps not yet completed for message id.
func (s *Scheduler) Pending(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chains[id]
	if !ok {
		return 0
	}
	return len(c.steps) - c.next
}

// Len returns the number of messages with pending steps.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chains)
}

// Stop cancels every chain and waits for writes already in flight. Later
// calls to Schedule are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, c := range s.chains {
		c.timer.Stop()
		delete(s.chains, id)
		pendingChains.Dec()
	}
	s.mu.Unlock()

	s.running.Wait()
}

// current reports whether c is still the live chain of id.
func (s *Scheduler) current(id int64, c *chain) bool {
	return !s.stopped && s.chains[id] == c
}

func (s *Scheduler) fire(id int64, c *chain) {
	s.mu.Lock()
	if !s.current(id, c) {
		s.mu.Unlock()
		return
	}
	step := c.steps[c.next]
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	err := s.advance(ctx, id, step.Status)
	cancel()

	if err != nil {
		transitionFailures.WithLabelValues(string(step.Status)).Inc()
		s.log.Warn().
			Err(err).
			Int64("message_id", id).
			Str("status", string(step.Status)).
			Msg("status transition failed")
	} else {
		transitions.WithLabelValues(string(step.Status)).Inc()

		s.mu.Lock()
		live := s.current(id, c)
		s.mu.Unlock()
		if live && s.pub != nil {
			s.pub.Publish(notify.Event{MessageID: id, Status: step.Status, At: s.clock.Now()})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(id, c) {
		return
	}
	c.next++
	if c.next >= len(c.steps) {
		delete(s.chains, id)
		pendingChains.Dec()
		return
	}
	delay := c.steps[c.next].After - step.After
	c.timer = s.clock.AfterFunc(delay, func() { s.fire(id, c) })
}
