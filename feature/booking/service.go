package booking

import (
	"context"
	"fmt"
	"time"

	"rental-sync/core/storage"
	"rental-sync/core/storage/models"

	"go.uber.org/zap"
)

// Service exposes booking queries, block coverage and cancellation quotes.
type Service struct {
	store  storage.Store
	logger *zap.Logger
}

// NewService creates a new booking service.
func NewService(store storage.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListUnits returns all rental units.
func (s *Service) ListUnits(ctx context.Context) ([]models.Unit, error) {
	return s.store.ListUnits(ctx)
}

// CreateUnit persists a new rental unit.
func (s *Service) CreateUnit(ctx context.Context, unit *models.Unit) error {
	if unit.Name == "" {
		return fmt.Errorf("unit name is required")
	}
	return s.store.CreateUnit(ctx, unit)
}

// DeleteUnit removes a rental unit.
func (s *Service) DeleteUnit(ctx context.Context, id uint) error {
	return s.store.DeleteUnit(ctx, id)
}

// ListBookings returns the canonical bookings of a unit.
func (s *Service) ListBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	unit, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("unit %d not found", unitID)
	}
	return s.store.ListBookings(ctx, unitID)
}

// UncoveredBlocks returns the unit's blocks whose date range is not explained
// by any confirmed booking. Only these are actionable for the operator.
func (s *Service) UncoveredBlocks(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	all, err := s.store.ListBookings(ctx, unitID)
	if err != nil {
		return nil, err
	}

	uncovered := make([]models.CanonicalBooking, 0)
	for i := range all {
		b := &all[i]
		if b.Status == models.BookingCancelled || !IsProvisionalBlock(b) {
			continue
		}
		if !IsCovered(b, all) {
			uncovered = append(uncovered, *b)
		}
	}
	return uncovered, nil
}

// CancellationQuote evaluates the cancellation policy against a booking at
// the given moment.
func (s *Service) CancellationQuote(ctx context.Context, bookingID uint, policy CancellationPolicy, at time.Time) (*CancellationOutcome, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("booking %d not found", bookingID)
	}

	result, err := EvaluateCancellation(policy, b.CheckIn, b.TotalPrice, at)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// IngestProvisional records an out-of-band reservation signal (e.g. from a
// forwarded confirmation email) for later linkage by the sync engine.
func (s *Service) IngestProvisional(ctx context.Context, prov *models.ProvisionalBooking) error {
	if prov.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if prov.CheckIn == "" || prov.CheckOut == "" {
		return fmt.Errorf("check-in and check-out dates are required")
	}
	if prov.CheckOut <= prov.CheckIn {
		return fmt.Errorf("check-out must be after check-in")
	}
	if prov.Status == "" {
		prov.Status = models.ProvisionalPending
	}

	s.logger.Info("Provisional booking ingested",
		zap.String("provider", prov.Provider),
		zap.String("reservation_id", prov.ReservationID),
		zap.Uint("unit_hint", prov.UnitHint),
	)
	return s.store.SaveProvisional(ctx, prov)
}
