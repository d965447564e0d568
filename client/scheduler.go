package client

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DavidOeztuerk/Skillswap-sub002/token"
)

// Scheduler refreshes the access token before it expires so steady-state
// traffic never sees a 401. It shares the client's Refresher, so proactive
// and reactive refreshes fall under the same single-flight and cooldown
// guarantees.
type Scheduler struct {
	store     token.Store
	refresher *Refresher
	cfg       Config
	log       logrus.FieldLogger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wakeCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler builds a scheduler driving the client's refresh coordinator.
func NewScheduler(c *Client) *Scheduler {
	return &Scheduler{
		store:     c.store,
		refresher: c.refresher,
		cfg:       c.cfg,
		log:       c.log.WithField("component", "scheduler"),
	}
}

// Start launches the background loop. Starting a running scheduler is a
// no-op: there is never more than one timer.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.wakeCh = make(chan struct{}, 1)
	s.doneCh = make(chan struct{})

	go s.loop(s.stopCh, s.wakeCh, s.doneCh)
}

// Stop cancels the pending timer and waits for the loop to exit. Stopping a
// stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Wake asks the scheduler to re-evaluate now. It is the terminal analog of
// a browser tab regaining visibility or focus: call it when the consuming
// surface comes back to the foreground. Never blocks.
func (s *Scheduler) Wake() {
	s.mu.Lock()
	wakeCh := s.wakeCh
	running := s.running
	s.mu.Unlock()

	if !running {
		return
	}
	select {
	case wakeCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(stopCh, wakeCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	s.evaluate()
	timer := time.NewTimer(s.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-wakeCh:
			s.evaluate()
			resetTimer(timer, s.nextDelay())
		case <-timer.C:
			s.evaluate()
			resetTimer(timer, s.nextDelay())
		}
	}
}

// evaluate refreshes now when the token is expired, inside the refresh
// buffer, or under the low-water mark. A missing or malformed token is left
// alone; the next tick rechecks.
func (s *Scheduler) evaluate() {
	remaining, ok := token.TimeUntilExpiry(s.store.AccessToken())
	if !ok {
		return
	}

	if remaining <= s.cfg.RefreshBuffer || remaining <= s.cfg.RefreshLowWater {
		s.log.WithField("remaining", remaining.Round(time.Second)).Debug("refreshing token proactively")
		if _, err := s.refresher.Refresh(context.Background()); err != nil {
			s.log.WithError(err).Warn("proactive refresh failed")
		}
	}
}

// nextDelay schedules the next check at expiry minus the buffer, floored at
// the minimum interval so a storm of short-lived tokens cannot busy-loop the
// scheduler.
func (s *Scheduler) nextDelay() time.Duration {
	remaining, ok := token.TimeUntilExpiry(s.store.AccessToken())
	if !ok {
		return s.cfg.SchedulerMinInterval
	}

	delay := remaining - s.cfg.RefreshBuffer
	if delay < s.cfg.SchedulerMinInterval {
		return s.cfg.SchedulerMinInterval
	}
	return delay
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
