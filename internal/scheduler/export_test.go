package scheduler

import "time"

// SetNow overrides the clock used for grace-window computation.
func (s *Scheduler) SetNow(now func() time.Time) {
	s.now = now
}
