package storage

import (
	"context"
	"errors"
	"fmt"

	"rental-sync/core/storage/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore implements Store on top of a GORM connection.
type gormStore struct {
	db *gorm.DB
}

// New creates a GORM-backed Store and migrates the schema.
func New(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(
		&models.Unit{},
		&models.ChannelConnection{},
		&models.RawEvent{},
		&models.CanonicalBooking{},
		&models.ProvisionalBooking{},
		&models.Setting{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &gormStore{db: db}, nil
}

// NewWithoutMigrate creates a GORM-backed Store without touching the schema.
// Used by tests that drive the connection through sqlmock.
func NewWithoutMigrate(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ListUnits(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	err := s.db.WithContext(ctx).Order("id").Find(&units).Error
	return units, err
}

func (s *gormStore) GetUnit(ctx context.Context, id uint) (*models.Unit, error) {
	var unit models.Unit
	err := s.db.WithContext(ctx).First(&unit, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (s *gormStore) CreateUnit(ctx context.Context, unit *models.Unit) error {
	return s.db.WithContext(ctx).Create(unit).Error
}

func (s *gormStore) DeleteUnit(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Unit{}, id).Error
}

func (s *gormStore) ListConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error) {
	var conns []models.ChannelConnection
	q := s.db.WithContext(ctx).Order("id")
	if unitID != 0 {
		q = q.Where("unit_id = ?", unitID)
	}
	err := q.Find(&conns).Error
	return conns, err
}

func (s *gormStore) ListEnabledConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error) {
	var conns []models.ChannelConnection
	err := s.db.WithContext(ctx).
		Where("unit_id = ? AND enabled = ?", unitID, true).
		Order("id").
		Find(&conns).Error
	return conns, err
}

func (s *gormStore) GetConnection(ctx context.Context, id uint) (*models.ChannelConnection, error) {
	var conn models.ChannelConnection
	err := s.db.WithContext(ctx).First(&conn, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *gormStore) CreateConnection(ctx context.Context, conn *models.ChannelConnection) error {
	return s.db.WithContext(ctx).Create(conn).Error
}

func (s *gormStore) UpdateConnection(ctx context.Context, conn *models.ChannelConnection) error {
	return s.db.WithContext(ctx).Save(conn).Error
}

func (s *gormStore) DeleteConnection(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("connection_id = ?", id).Delete(&models.RawEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChannelConnection{}, id).Error
	})
}

func (s *gormStore) ListActiveRawEvents(ctx context.Context, unitID uint) ([]models.RawEvent, error) {
	var events []models.RawEvent
	err := s.db.WithContext(ctx).
		Where("unit_id = ? AND status <> ?", unitID, models.EventCancelled).
		Order("start_date").
		Find(&events).Error
	return events, err
}

func (s *gormStore) ListRawEventsByConnection(ctx context.Context, connectionID uint) ([]models.RawEvent, error) {
	var events []models.RawEvent
	err := s.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("start_date").
		Find(&events).Error
	return events, err
}

func (s *gormStore) FindRawEvent(ctx context.Context, connectionID uint, externalID string) (*models.RawEvent, error) {
	var event models.RawEvent
	err := s.db.WithContext(ctx).
		Where("connection_id = ? AND external_id = ?", connectionID, externalID).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *gormStore) SaveRawEvent(ctx context.Context, event *models.RawEvent) error {
	return s.db.WithContext(ctx).Save(event).Error
}

func (s *gormStore) GetBooking(ctx context.Context, id uint) (*models.CanonicalBooking, error) {
	var booking models.CanonicalBooking
	err := s.db.WithContext(ctx).First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *gormStore) ListBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	var bookings []models.CanonicalBooking
	err := s.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("check_in").
		Find(&bookings).Error
	return bookings, err
}

func (s *gormStore) ListManualBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	var bookings []models.CanonicalBooking
	err := s.db.WithContext(ctx).
		Where("unit_id = ? AND external_ref = '' AND provisional_id IS NULL", unitID).
		Order("check_in").
		Find(&bookings).Error
	return bookings, err
}

func (s *gormStore) FindBookingByExternalRef(ctx context.Context, unitID uint, externalRef string) (*models.CanonicalBooking, error) {
	if externalRef == "" {
		return nil, nil
	}
	var booking models.CanonicalBooking
	err := s.db.WithContext(ctx).
		Where("unit_id = ? AND external_ref = ?", unitID, externalRef).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *gormStore) FindBookingByProvisional(ctx context.Context, unitID uint, provisionalID uint) (*models.CanonicalBooking, error) {
	var booking models.CanonicalBooking
	err := s.db.WithContext(ctx).
		Where("unit_id = ? AND provisional_id = ?", unitID, provisionalID).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *gormStore) SaveBooking(ctx context.Context, booking *models.CanonicalBooking) error {
	return s.db.WithContext(ctx).Save(booking).Error
}

func (s *gormStore) ListPendingProvisionals(ctx context.Context, unitHint uint) ([]models.ProvisionalBooking, error) {
	var provs []models.ProvisionalBooking
	err := s.db.WithContext(ctx).
		Where("unit_hint = ? AND status <> ?", unitHint, models.ProvisionalCancelled).
		Order("id").
		Find(&provs).Error
	return provs, err
}

func (s *gormStore) SaveProvisional(ctx context.Context, prov *models.ProvisionalBooking) error {
	return s.db.WithContext(ctx).Save(prov).Error
}

func (s *gormStore) GetSetting(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).First(&setting, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *gormStore) SetSetting(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&setting).Error
}
