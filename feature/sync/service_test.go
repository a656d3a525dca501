package sync

import (
	"context"
	"sync/atomic"
	"testing"

	"rental-sync/core/storage/models"
	"rental-sync/feature/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, store *memStore, factory channel.Factory) *Service {
	t.Helper()
	online := &atomic.Bool{}
	online.Store(true)
	engine := NewEngine(store, factory, zap.NewNop())
	return NewService(store, engine, online, zap.NewNop())
}

func TestService_SyncNowRespectsOfflineGate(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){}})

	svc.SetOnline(false)
	_, err := svc.SyncNow(context.Background(), 0)
	assert.ErrorIs(t, err, channel.ErrOffline)

	svc.SetOnline(true)
	result, err := svc.SyncNow(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}

func TestService_SyncNowAggregatesAllUnits(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.CreateUnit(context.Background(), &models.Unit{Name: "Seaside Flat"}))
	require.NoError(t, store.CreateUnit(context.Background(), &models.Unit{Name: "Mountain Cabin"}))

	units, _ := store.ListUnits(context.Background())
	pulls := map[uint]func() (*channel.PullResult, error){}
	for i, u := range units {
		conn := addConnection(t, store, u.ID, "airbnb")
		uid := []string{"abnb-1", "abnb-2"}[i]
		pulls[conn.ID] = events(guestEvent(uid, "Jane Miller", "2025-06-01", "2025-06-05"))
	}

	svc := newTestService(t, store, &stubFactory{pulls: pulls})
	result, err := svc.SyncNow(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Empty(t, result.Errors)
}

func TestService_Status(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){}})

	status := svc.Status()
	assert.Equal(t, StateStopped, status.State)
	assert.True(t, status.Online)

	require.NoError(t, svc.SetInterval("15"))
	status = svc.Status()
	assert.Equal(t, StateRunning, status.State)
	assert.Equal(t, "15", status.Interval)
}

func TestService_MinimalBookingsToggle(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){}})

	enabled, err := svc.MinimalBookings(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, svc.SetMinimalBookings(context.Background(), true))
	enabled, err = svc.MinimalBookings(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}
