package sync

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"rental-sync/core/storage"
	"rental-sync/core/storage/models"
	"rental-sync/core/utils"
	"rental-sync/feature/channel"

	"go.uber.org/zap"
)

// cycleTimeout bounds one full scheduled cycle across all units.
const cycleTimeout = 15 * time.Minute

// Service ties the engine and scheduler together and exposes the sync
// operations to handlers and sibling features. It implements
// channel.Resyncer so connection deletion can trigger a unit re-sync.
type Service struct {
	store     storage.Store
	engine    *Engine
	scheduler *Scheduler
	online    *atomic.Bool
	logger    *zap.Logger
}

// NewService creates the sync service. The online flag is shared with the
// transport layer, which reads it before every network attempt.
func NewService(store storage.Store, engine *Engine, online *atomic.Bool, logger *zap.Logger) *Service {
	s := &Service{
		store:  store,
		engine: engine,
		online: online,
		logger: logger,
	}
	s.scheduler = NewScheduler(s.runScheduledCycle, logger)
	return s
}

// Start arms the scheduler with the configured interval and launches it.
func (s *Service) Start(interval string) error {
	if err := s.scheduler.SetInterval(interval); err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

// Stop halts the scheduler.
func (s *Service) Stop() {
	s.scheduler.Stop()
}

// ResyncUnit re-runs reconciliation for one unit, e.g. after a connection
// was deleted, so derived canonical bookings are corrected.
func (s *Service) ResyncUnit(ctx context.Context, unitID uint) error {
	_, err := s.engine.SyncUnit(ctx, unitID, false)
	return err
}

// SyncNow runs one manual cycle for a single unit, or for all units when
// unitID is zero. Manual triggers retry token-expired connections but still
// respect the offline gate.
func (s *Service) SyncNow(ctx context.Context, unitID uint) (*Result, error) {
	if !s.online.Load() {
		return nil, channel.ErrOffline
	}

	if unitID != 0 {
		return s.engine.SyncUnit(ctx, unitID, false)
	}

	units, err := s.store.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}

	total := &Result{Errors: []string{}}
	for i := range units {
		result, err := s.engine.SyncUnit(ctx, units[i].ID, false)
		if err != nil {
			total.Errors = append(total.Errors, fmt.Sprintf("unit %s: %v", units[i].Name, err))
			continue
		}
		total.merge(result)
	}
	return total, nil
}

// SetInterval reconfigures the scheduler.
func (s *Service) SetInterval(value string) error {
	return s.scheduler.SetInterval(value)
}

// SetOnline records the network state for both the transport gate and the
// scheduler.
func (s *Service) SetOnline(online bool) {
	s.online.Store(online)
	s.scheduler.SetOnline(online)
	s.logger.Info("Network state changed", zap.Bool("online", online))
}

// Status reports the scheduler state for the status endpoint.
func (s *Service) Status() Status {
	return Status{
		State:    s.scheduler.State(),
		Interval: s.scheduler.Interval(),
		Online:   s.online.Load(),
	}
}

// MinimalBookings reads the minimal-bookings feature toggle.
func (s *Service) MinimalBookings(ctx context.Context) (bool, error) {
	value, err := s.store.GetSetting(ctx, models.SettingMinimalBookings)
	if err != nil {
		return false, err
	}
	return utils.ToBool(value), nil
}

// SetMinimalBookings persists the minimal-bookings feature toggle.
func (s *Service) SetMinimalBookings(ctx context.Context, enabled bool) error {
	return s.store.SetSetting(ctx, models.SettingMinimalBookings, strconv.FormatBool(enabled))
}

// runScheduledCycle is the timer callback: iterate all units sequentially so
// shared proxy capacity is never overwhelmed, swallowing per-unit errors.
func (s *Service) runScheduledCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	units, err := s.store.ListUnits(ctx)
	if err != nil {
		s.logger.Error("Scheduled cycle aborted: listing units failed", zap.Error(err))
		return
	}

	for i := range units {
		result, err := s.engine.SyncUnit(ctx, units[i].ID, true)
		if err != nil {
			s.logger.Error("Scheduled sync failed",
				zap.Uint("unit_id", units[i].ID),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("Scheduled sync finished",
			zap.Uint("unit_id", units[i].ID),
			zap.Int("processed", result.Processed),
			zap.Int("conflicts", result.Conflicts),
			zap.Int("errors", len(result.Errors)),
		)
	}
}
