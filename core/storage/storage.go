package storage

import (
	"context"

	"rental-sync/core/storage/models"
)

// Store defines the persistence operations consumed by the sync engine and
// the HTTP features. Lookup methods return (nil, nil) when no row matches.
type Store interface {
	// Units
	ListUnits(ctx context.Context) ([]models.Unit, error)
	GetUnit(ctx context.Context, id uint) (*models.Unit, error)
	CreateUnit(ctx context.Context, unit *models.Unit) error
	DeleteUnit(ctx context.Context, id uint) error

	// Channel connections
	ListConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error)
	ListEnabledConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error)
	GetConnection(ctx context.Context, id uint) (*models.ChannelConnection, error)
	CreateConnection(ctx context.Context, conn *models.ChannelConnection) error
	UpdateConnection(ctx context.Context, conn *models.ChannelConnection) error
	// DeleteConnection removes the connection together with its raw events.
	DeleteConnection(ctx context.Context, id uint) error

	// Raw events
	ListActiveRawEvents(ctx context.Context, unitID uint) ([]models.RawEvent, error)
	ListRawEventsByConnection(ctx context.Context, connectionID uint) ([]models.RawEvent, error)
	FindRawEvent(ctx context.Context, connectionID uint, externalID string) (*models.RawEvent, error)
	SaveRawEvent(ctx context.Context, event *models.RawEvent) error

	// Canonical bookings
	GetBooking(ctx context.Context, id uint) (*models.CanonicalBooking, error)
	ListBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error)
	ListManualBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error)
	FindBookingByExternalRef(ctx context.Context, unitID uint, externalRef string) (*models.CanonicalBooking, error)
	FindBookingByProvisional(ctx context.Context, unitID uint, provisionalID uint) (*models.CanonicalBooking, error)
	SaveBooking(ctx context.Context, booking *models.CanonicalBooking) error

	// Provisional bookings
	ListPendingProvisionals(ctx context.Context, unitHint uint) ([]models.ProvisionalBooking, error)
	SaveProvisional(ctx context.Context, prov *models.ProvisionalBooking) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
