package storage

import (
	"context"
	"regexp"
	"testing"

	"rental-sync/core/storage/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewWithoutMigrate(db), mock
}

func TestGetUnit_NotFoundReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `units` WHERE `units`.`id` = ? ORDER BY `units`.`id` LIMIT ?")).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	unit, err := store.GetUnit(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRawEvent_NotFoundReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `raw_events`").
		WithArgs(7, "uid-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	event, err := store.FindRawEvent(context.Background(), 7, "uid-1")
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBookingByExternalRef_EmptyRefShortCircuits(t *testing.T) {
	store, mock := newMockStore(t)

	// Manual bookings carry an empty ref; no query must be issued.
	booking, err := store.FindBookingByExternalRef(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Nil(t, booking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEnabledConnections_Filters(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "unit_id", "channel", "enabled"}).
		AddRow(1, 3, "airbnb", true).
		AddRow(2, 3, "booking", true)
	mock.ExpectQuery("SELECT \\* FROM `channel_connections`").
		WithArgs(3, true).
		WillReturnRows(rows)

	conns, err := store.ListEnabledConnections(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "airbnb", conns[0].Channel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteConnection_CascadesRawEvents(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `raw_events`").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `channel_connections`").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.DeleteConnection(context.Background(), 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSetting_MissingReturnsEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `settings`").
		WithArgs(models.SettingMinimalBookings, 1).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))

	value, err := store.GetSetting(context.Background(), models.SettingMinimalBookings)
	require.NoError(t, err)
	assert.Equal(t, "", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSetting_ReturnsValue(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `settings`").
		WithArgs(models.SettingMinimalBookings, 1).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow(models.SettingMinimalBookings, "true"))

	value, err := store.GetSetting(context.Background(), models.SettingMinimalBookings)
	require.NoError(t, err)
	assert.Equal(t, "true", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}
