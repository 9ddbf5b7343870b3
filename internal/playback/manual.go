package playback

import "time"

// ManualScheduler records timer requests without a clock. Tests and headless
// callers advance time by calling Fire themselves.
type ManualScheduler struct {
	Periods map[Timer]time.Duration
	Starts  map[Timer]int
	Cancels map[Timer]int
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		Periods: make(map[Timer]time.Duration),
		Starts:  make(map[Timer]int),
		Cancels: make(map[Timer]int),
	}
}

func (s *ManualScheduler) Start(t Timer, period time.Duration) {
	s.Periods[t] = period
	s.Starts[t]++
}

func (s *ManualScheduler) Cancel(t Timer) {
	delete(s.Periods, t)
	s.Cancels[t]++
}

// Active reports whether t is armed.
func (s *ManualScheduler) Active(t Timer) bool {
	_, ok := s.Periods[t]
	return ok
}

// Fire delivers t to c if it is armed and reports whether it did.
func (s *ManualScheduler) Fire(c *Controller, t Timer) bool {
	if !s.Active(t) {
		return false
	}
	c.Fire(t)
	return true
}
