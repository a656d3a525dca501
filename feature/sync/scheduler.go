package sync

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// State is the scheduler's finite state.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running-on-interval"
)

// validIntervals is the closed set of accepted interval values, in minutes,
// plus "manual" to disable the timer.
var validIntervals = map[string]struct{}{
	"15":     {},
	"30":     {},
	"60":     {},
	"manual": {},
}

// Scheduler drives periodic sync cycles. A network-offline event stops the
// timer; coming back online restarts it unless the interval is "manual".
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	entry    cron.EntryID
	interval string
	online   bool

	run    func()
	logger *zap.Logger
}

// NewScheduler creates a stopped scheduler that invokes run on every tick.
func NewScheduler(run func(), logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		interval: "manual",
		online:   true,
		run:      run,
		logger:   logger,
	}
}

// Start launches the underlying cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the underlying cron runner.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// SetInterval stops any existing timer and, unless the value is "manual",
// starts a new periodic one. Offline state defers the start until the next
// online event.
func (s *Scheduler) SetInterval(value string) error {
	if _, ok := validIntervals[value]; !ok {
		return fmt.Errorf("invalid sync interval %q (want 15, 30, 60 or manual)", value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeEntry()
	s.interval = value

	if value == "manual" || !s.online {
		return nil
	}
	return s.schedule()
}

// SetOnline records the network state. Going offline stops the timer; coming
// back online restarts it when a non-manual interval is configured.
func (s *Scheduler) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.online = online
	if !online {
		s.removeEntry()
		return
	}
	if s.interval != "manual" && s.entry == 0 {
		if err := s.schedule(); err != nil {
			s.logger.Error("Restarting sync timer failed", zap.Error(err))
		}
	}
}

// State reports whether a periodic timer is armed.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != 0 {
		return StateRunning
	}
	return StateStopped
}

// Interval returns the configured interval value.
func (s *Scheduler) Interval() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Online reports the recorded network state.
func (s *Scheduler) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *Scheduler) schedule() error {
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %sm", s.interval), s.run)
	if err != nil {
		return err
	}
	s.entry = id
	s.logger.Info("Sync timer armed", zap.String("interval", s.interval))
	return nil
}

func (s *Scheduler) removeEntry() {
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
}
