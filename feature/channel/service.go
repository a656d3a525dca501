package channel

import (
	"context"
	"fmt"

	"rental-sync/core/storage"
	"rental-sync/core/storage/models"

	"go.uber.org/zap"
)

// Resyncer re-runs the reconciliation pass for a unit. It is implemented by
// the sync feature and injected here so connection deletion can correct the
// derived canonical bookings instead of orphaning them.
type Resyncer interface {
	ResyncUnit(ctx context.Context, unitID uint) error
}

// Service manages channel connections.
type Service struct {
	store  storage.Store
	logger *zap.Logger
	resync Resyncer
}

// NewService creates a new channel connection service.
func NewService(store storage.Store, logger *zap.Logger, resync Resyncer) *Service {
	return &Service{store: store, logger: logger, resync: resync}
}

// List returns the connections for a unit (all units when unitID is zero).
func (s *Service) List(ctx context.Context, unitID uint) ([]models.ChannelConnection, error) {
	return s.store.ListConnections(ctx, unitID)
}

// Get returns one connection, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uint) (*models.ChannelConnection, error) {
	return s.store.GetConnection(ctx, id)
}

// Create validates and persists a new connection.
func (s *Service) Create(ctx context.Context, conn *models.ChannelConnection) error {
	if err := validateConnection(conn); err != nil {
		return err
	}
	conn.Channel = Normalize(conn.Channel)
	conn.LastStatus = models.SyncPending
	return s.store.CreateConnection(ctx, conn)
}

// Update validates and persists changes to an existing connection.
func (s *Service) Update(ctx context.Context, conn *models.ChannelConnection) error {
	if err := validateConnection(conn); err != nil {
		return err
	}
	conn.Channel = Normalize(conn.Channel)
	return s.store.UpdateConnection(ctx, conn)
}

// Delete removes a connection together with its raw events, then re-runs the
// full reconciliation pass for the unit so derived bookings are corrected.
func (s *Service) Delete(ctx context.Context, id uint) error {
	conn, err := s.store.GetConnection(ctx, id)
	if err != nil {
		return err
	}
	if conn == nil {
		return fmt.Errorf("connection %d not found", id)
	}

	if err := s.store.DeleteConnection(ctx, id); err != nil {
		return fmt.Errorf("deleting connection %d: %w", id, err)
	}

	s.logger.Info("Connection deleted, re-reconciling unit",
		zap.Uint("connection_id", id),
		zap.Uint("unit_id", conn.UnitID),
	)

	if s.resync != nil {
		if err := s.resync.ResyncUnit(ctx, conn.UnitID); err != nil {
			return fmt.Errorf("re-reconciling unit %d: %w", conn.UnitID, err)
		}
	}
	return nil
}

// validateConnection enforces the connection config surface: channel and URL
// required, priority override within 0-100.
func validateConnection(conn *models.ChannelConnection) error {
	if Normalize(conn.Channel) == "" {
		return fmt.Errorf("channel is required")
	}
	if Normalize(conn.Channel) == Manual {
		return fmt.Errorf("the manual pseudo-channel cannot have a feed connection")
	}
	if conn.URL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if conn.UnitID == 0 {
		return fmt.Errorf("unit is required")
	}
	if conn.Priority != nil && (*conn.Priority < 0 || *conn.Priority > 100) {
		return fmt.Errorf("priority must be between 0 and 100")
	}
	return nil
}
