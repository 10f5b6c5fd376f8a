// Package scheduler fires the publishing run at the configured daily clock
// times. Triggers that would overlap a still-running pass are skipped; the
// store's idempotent publish records make a skipped trigger harmless. A
// grace window lets a daemon started shortly after a scheduled time catch
// up on the trigger it missed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"postbeat/internal/config"
	"postbeat/internal/logging"
	"postbeat/internal/services"
	"postbeat/internal/store"
)

// RunFunc is the publishing entry point invoked on each trigger.
type RunFunc func(ctx context.Context) error

// Scheduler owns the cron entries and the single-run-at-a-time gate.
type Scheduler struct {
	cfg    *config.Config
	store  *store.Store
	run    RunFunc
	cron   *cron.Cron
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	running    bool
	registered bool
	wg         sync.WaitGroup
}

// New validates the configured schedule and builds a scheduler. The run
// function is invoked once per trigger with a context that survives daemon
// shutdown long enough for the in-flight pass to finish.
func New(cfg *config.Config, st *store.Store, run RunFunc, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	for _, clockTime := range cfg.Schedule.Times {
		if _, _, err := config.ParseClockTime(clockTime); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "scheduler", "init",
				fmt.Sprintf("invalid schedule time %q", clockTime), err)
		}
	}

	return &Scheduler{
		cfg:    cfg,
		store:  st,
		run:    run,
		cron:   cron.New(cron.WithLocation(cfg.Location())),
		logger: logging.NewComponentLogger(logger, "scheduler"),
		now:    time.Now,
	}, nil
}

// Start registers the cron entries, fires any trigger missed within the
// grace window, and begins waiting for scheduled times. The context bounds
// catch-up and triggered runs, not the cron clock itself; call Stop to halt.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.registerEntries(ctx); err != nil {
		return err
	}

	if err := s.catchUpMissed(ctx); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// registerEntries adds the cron entries once; restarting the scheduler must
// not duplicate them.
func (s *Scheduler) registerEntries(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		return nil
	}

	for _, clockTime := range s.cfg.Schedule.Times {
		hour, minute, err := config.ParseClockTime(clockTime)
		if err != nil {
			return err
		}
		spec := fmt.Sprintf("%d %d * * *", minute, hour)
		if _, err := s.cron.AddFunc(spec, func() { s.trigger(ctx, "cron") }); err != nil {
			return services.Wrap(services.ErrConfiguration, "scheduler", "start",
				fmt.Sprintf("register schedule %q", clockTime), err)
		}
		s.logger.Info("registered daily trigger",
			logging.String("time", clockTime),
			logging.String("timezone", s.cfg.Schedule.Timezone))
	}
	s.registered = true
	return nil
}

// Stop halts the cron clock and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.wg.Wait()
}

// RunNow triggers a publishing pass immediately, subject to the overlap gate.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.tryAcquire() {
		return services.Wrap(services.ErrPrecondition, "scheduler", "run now", "a run is already in progress", nil)
	}
	defer s.release()
	return s.run(ctx)
}

func (s *Scheduler) catchUpMissed(ctx context.Context) error {
	state, err := s.store.SchedulerState(ctx)
	if err != nil {
		return err
	}

	grace := time.Duration(s.cfg.Schedule.GraceSeconds) * time.Second
	slot, missed := MissedSlot(s.cfg.Schedule.Times, s.cfg.Location(), grace, s.now(), state.LastRun)
	if !missed {
		return nil
	}

	s.logger.Info("running missed trigger within grace window",
		logging.String("slot", slot.Format(time.RFC3339)))
	s.trigger(ctx, "grace catch-up")
	return nil
}

// trigger runs one pass if no other pass is active. Overlapping triggers are
// dropped, not queued.
func (s *Scheduler) trigger(ctx context.Context, source string) {
	if !s.tryAcquire() {
		s.logger.Warn("previous run still in progress, skipping trigger",
			logging.String("source", source))
		return
	}
	defer s.release()

	s.logger.Info("trigger fired", logging.String("source", source))
	if err := s.run(ctx); err != nil {
		s.logger.Error("run failed", logging.Error(err))
	}
}

func (s *Scheduler) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.wg.Add(1)
	return true
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.wg.Done()
}

// MissedSlot returns the most recent scheduled slot that already passed
// today, lies within the grace window, and postdates the last recorded run.
// The boolean reports whether such a slot exists.
func MissedSlot(times []string, loc *time.Location, grace time.Duration, now time.Time, lastRun *time.Time) (time.Time, bool) {
	if grace <= 0 {
		return time.Time{}, false
	}

	now = now.In(loc)
	var (
		best  time.Time
		found bool
	)
	for _, clockTime := range times {
		hour, minute, err := config.ParseClockTime(clockTime)
		if err != nil {
			continue
		}
		slot := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if slot.After(now) {
			continue
		}
		if now.Sub(slot) > grace {
			continue
		}
		if lastRun != nil && !lastRun.Before(slot) {
			continue
		}
		if !found || slot.After(best) {
			best = slot
			found = true
		}
	}
	return best, found
}
