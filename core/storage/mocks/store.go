package mocks

import (
	"context"

	"rental-sync/core/storage/models"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of storage.Store
type Store struct {
	mock.Mock
}

func (m *Store) ListUnits(ctx context.Context) ([]models.Unit, error) {
	args := m.Called(ctx)
	if units, ok := args.Get(0).([]models.Unit); ok {
		return units, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) GetUnit(ctx context.Context, id uint) (*models.Unit, error) {
	args := m.Called(ctx, id)
	if unit, ok := args.Get(0).(*models.Unit); ok {
		return unit, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) CreateUnit(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *Store) DeleteUnit(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Store) ListConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error) {
	args := m.Called(ctx, unitID)
	if conns, ok := args.Get(0).([]models.ChannelConnection); ok {
		return conns, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) ListEnabledConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error) {
	args := m.Called(ctx, unitID)
	if conns, ok := args.Get(0).([]models.ChannelConnection); ok {
		return conns, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) GetConnection(ctx context.Context, id uint) (*models.ChannelConnection, error) {
	args := m.Called(ctx, id)
	if conn, ok := args.Get(0).(*models.ChannelConnection); ok {
		return conn, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) CreateConnection(ctx context.Context, conn *models.ChannelConnection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *Store) UpdateConnection(ctx context.Context, conn *models.ChannelConnection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *Store) DeleteConnection(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Store) ListActiveRawEvents(ctx context.Context, unitID uint) ([]models.RawEvent, error) {
	args := m.Called(ctx, unitID)
	if events, ok := args.Get(0).([]models.RawEvent); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) ListRawEventsByConnection(ctx context.Context, connectionID uint) ([]models.RawEvent, error) {
	args := m.Called(ctx, connectionID)
	if events, ok := args.Get(0).([]models.RawEvent); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) FindRawEvent(ctx context.Context, connectionID uint, externalID string) (*models.RawEvent, error) {
	args := m.Called(ctx, connectionID, externalID)
	if event, ok := args.Get(0).(*models.RawEvent); ok {
		return event, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) SaveRawEvent(ctx context.Context, event *models.RawEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *Store) GetBooking(ctx context.Context, id uint) (*models.CanonicalBooking, error) {
	args := m.Called(ctx, id)
	if booking, ok := args.Get(0).(*models.CanonicalBooking); ok {
		return booking, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) ListBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	args := m.Called(ctx, unitID)
	if bookings, ok := args.Get(0).([]models.CanonicalBooking); ok {
		return bookings, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) ListManualBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	args := m.Called(ctx, unitID)
	if bookings, ok := args.Get(0).([]models.CanonicalBooking); ok {
		return bookings, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) FindBookingByExternalRef(ctx context.Context, unitID uint, externalRef string) (*models.CanonicalBooking, error) {
	args := m.Called(ctx, unitID, externalRef)
	if booking, ok := args.Get(0).(*models.CanonicalBooking); ok {
		return booking, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) FindBookingByProvisional(ctx context.Context, unitID uint, provisionalID uint) (*models.CanonicalBooking, error) {
	args := m.Called(ctx, unitID, provisionalID)
	if booking, ok := args.Get(0).(*models.CanonicalBooking); ok {
		return booking, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) SaveBooking(ctx context.Context, booking *models.CanonicalBooking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *Store) ListPendingProvisionals(ctx context.Context, unitHint uint) ([]models.ProvisionalBooking, error) {
	args := m.Called(ctx, unitHint)
	if provs, ok := args.Get(0).([]models.ProvisionalBooking); ok {
		return provs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) SaveProvisional(ctx context.Context, prov *models.ProvisionalBooking) error {
	args := m.Called(ctx, prov)
	return args.Error(0)
}

func (m *Store) GetSetting(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *Store) SetSetting(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
