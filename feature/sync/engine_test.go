package sync

import (
	"context"
	"sort"
	"testing"

	"rental-sync/core/storage"
	"rental-sync/core/storage/models"
	"rental-sync/feature/channel"
	"rental-sync/feature/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a stateful in-memory Store. The engine's fold phase reads back
// what ingestion wrote, which a stubbed mock cannot express naturally.
type memStore struct {
	units        map[uint]models.Unit
	connections  map[uint]models.ChannelConnection
	rawEvents    map[uint]models.RawEvent
	bookings     map[uint]models.CanonicalBooking
	provisionals map[uint]models.ProvisionalBooking
	settings     map[string]string
	nextID       uint
}

func newMemStore() *memStore {
	return &memStore{
		units:        map[uint]models.Unit{},
		connections:  map[uint]models.ChannelConnection{},
		rawEvents:    map[uint]models.RawEvent{},
		bookings:     map[uint]models.CanonicalBooking{},
		provisionals: map[uint]models.ProvisionalBooking{},
		settings:     map[string]string{},
		nextID:       100,
	}
}

var _ storage.Store = (*memStore)(nil)

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) ListUnits(ctx context.Context) ([]models.Unit, error) {
	out := make([]models.Unit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetUnit(ctx context.Context, id uint) (*models.Unit, error) {
	if u, ok := s.units[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *memStore) CreateUnit(ctx context.Context, unit *models.Unit) error {
	if unit.ID == 0 {
		unit.ID = s.id()
	}
	s.units[unit.ID] = *unit
	return nil
}

func (s *memStore) DeleteUnit(ctx context.Context, id uint) error {
	delete(s.units, id)
	return nil
}

func (s *memStore) ListConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error) {
	var out []models.ChannelConnection
	for _, c := range s.connections {
		if c.UnitID == unitID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListEnabledConnections(ctx context.Context, unitID uint) ([]models.ChannelConnection, error) {
	all, _ := s.ListConnections(ctx, unitID)
	out := all[:0]
	for _, c := range all {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetConnection(ctx context.Context, id uint) (*models.ChannelConnection, error) {
	if c, ok := s.connections[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *memStore) CreateConnection(ctx context.Context, conn *models.ChannelConnection) error {
	if conn.ID == 0 {
		conn.ID = s.id()
	}
	s.connections[conn.ID] = *conn
	return nil
}

func (s *memStore) UpdateConnection(ctx context.Context, conn *models.ChannelConnection) error {
	s.connections[conn.ID] = *conn
	return nil
}

func (s *memStore) DeleteConnection(ctx context.Context, id uint) error {
	delete(s.connections, id)
	for evID, ev := range s.rawEvents {
		if ev.ConnectionID == id {
			delete(s.rawEvents, evID)
		}
	}
	return nil
}

func (s *memStore) ListActiveRawEvents(ctx context.Context, unitID uint) ([]models.RawEvent, error) {
	var out []models.RawEvent
	for _, ev := range s.rawEvents {
		if ev.UnitID == unitID && ev.Status != models.EventCancelled {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	return out, nil
}

func (s *memStore) ListRawEventsByConnection(ctx context.Context, connectionID uint) ([]models.RawEvent, error) {
	var out []models.RawEvent
	for _, ev := range s.rawEvents {
		if ev.ConnectionID == connectionID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) FindRawEvent(ctx context.Context, connectionID uint, externalID string) (*models.RawEvent, error) {
	for _, ev := range s.rawEvents {
		if ev.ConnectionID == connectionID && ev.ExternalID == externalID {
			found := ev
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memStore) SaveRawEvent(ctx context.Context, event *models.RawEvent) error {
	if event.ID == 0 {
		event.ID = s.id()
	}
	s.rawEvents[event.ID] = *event
	return nil
}

func (s *memStore) GetBooking(ctx context.Context, id uint) (*models.CanonicalBooking, error) {
	if b, ok := s.bookings[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (s *memStore) ListBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	var out []models.CanonicalBooking
	for _, b := range s.bookings {
		if b.UnitID == unitID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListManualBookings(ctx context.Context, unitID uint) ([]models.CanonicalBooking, error) {
	all, _ := s.ListBookings(ctx, unitID)
	out := all[:0]
	for _, b := range all {
		if b.ExternalRef == "" && b.ProvisionalID == nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) FindBookingByExternalRef(ctx context.Context, unitID uint, externalRef string) (*models.CanonicalBooking, error) {
	if externalRef == "" {
		return nil, nil
	}
	for _, b := range s.bookings {
		if b.UnitID == unitID && b.ExternalRef == externalRef {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindBookingByProvisional(ctx context.Context, unitID uint, provisionalID uint) (*models.CanonicalBooking, error) {
	for _, b := range s.bookings {
		if b.UnitID == unitID && b.ProvisionalID != nil && *b.ProvisionalID == provisionalID {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memStore) SaveBooking(ctx context.Context, booking *models.CanonicalBooking) error {
	if booking.ID == 0 {
		booking.ID = s.id()
	}
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *memStore) ListPendingProvisionals(ctx context.Context, unitHint uint) ([]models.ProvisionalBooking, error) {
	var out []models.ProvisionalBooking
	for _, p := range s.provisionals {
		if p.UnitHint == unitHint && p.Status != models.ProvisionalCancelled {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SaveProvisional(ctx context.Context, prov *models.ProvisionalBooking) error {
	if prov.ID == 0 {
		prov.ID = s.id()
	}
	s.provisionals[prov.ID] = *prov
	return nil
}

func (s *memStore) GetSetting(ctx context.Context, key string) (string, error) {
	return s.settings[key], nil
}

func (s *memStore) SetSetting(ctx context.Context, key, value string) error {
	s.settings[key] = value
	return nil
}

// stubFactory hands every connection the same canned adapter.
type stubFactory struct {
	pulls map[uint]func() (*channel.PullResult, error)
}

func (f *stubFactory) ForConnection(conn *models.ChannelConnection) channel.Adapter {
	return &stubAdapter{pull: f.pulls[conn.ID]}
}

type stubAdapter struct {
	pull func() (*channel.PullResult, error)
}

func (a *stubAdapter) Name() string { return "stub" }

func (a *stubAdapter) Pull(ctx context.Context, conn *models.ChannelConnection) (*channel.PullResult, error) {
	return a.pull()
}

func (a *stubAdapter) Push(ctx context.Context, conn *models.ChannelConnection, bookings []models.CanonicalBooking) error {
	return channel.ErrNotImplemented
}

func events(evs ...feed.Event) func() (*channel.PullResult, error) {
	return func() (*channel.PullResult, error) {
		return &channel.PullResult{Events: evs, Log: "ok"}, nil
	}
}

func guestEvent(uid, guest, start, end string) feed.Event {
	return feed.Event{
		UID:     uid,
		Summary: "Reserved - " + guest,
		Start:   start,
		End:     end,
		Status:  models.EventConfirmed,
		Kind:    models.KindBooking,
	}
}

func addConnection(t *testing.T, store *memStore, unitID uint, ch string) *models.ChannelConnection {
	t.Helper()
	conn := &models.ChannelConnection{UnitID: unitID, Channel: ch, URL: "https://" + ch + ".example/cal.ics", Enabled: true}
	require.NoError(t, store.CreateConnection(context.Background(), conn))
	return conn
}

func newTestEngine(store *memStore, factory channel.Factory) *Engine {
	return NewEngine(store, factory, zap.NewNop())
}

func TestSyncUnit_PriorityConflictFlagsBoth(t *testing.T) {
	store := newMemStore()
	bookingConn := addConnection(t, store, 1, "booking")
	airbnbConn := addConnection(t, store, 1, "airbnb")

	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		bookingConn.ID: events(guestEvent("bdc-1", "Jane Miller", "2025-06-01", "2025-06-05")),
		airbnbConn.ID:  events(guestEvent("abnb-1", "John Smith", "2025-06-01", "2025-06-05")),
	}}

	result, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Conflicts)
	assert.Empty(t, result.Errors)

	bookings, _ := store.ListBookings(context.Background(), 1)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.True(t, b.ConflictDetected, "both sides of the conflict must be flagged: %s", b.Source)
		assert.Equal(t, models.BookingConfirmed, b.Status, "no silent data loss")
	}
}

func TestSyncUnit_UpdateNotDuplicate(t *testing.T) {
	store := newMemStore()
	conn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-05")),
	}}
	engine := newTestEngine(store, factory)

	_, err := engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	// Same UID, extended stay.
	factory.pulls[conn.ID] = events(guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-07"))
	_, err = engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	bookings, _ := store.ListBookings(context.Background(), 1)
	require.Len(t, bookings, 1)
	assert.Equal(t, "2025-06-07", bookings[0].CheckOut)
	assert.False(t, bookings[0].ConflictDetected)
}

func TestSyncUnit_ImplicitCancellation(t *testing.T) {
	store := newMemStore()
	conn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(
			guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-05"),
			guestEvent("abnb-2", "John Smith", "2025-07-01", "2025-07-05"),
		),
	}}
	engine := newTestEngine(store, factory)

	_, err := engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	// Second pull no longer carries abnb-2.
	factory.pulls[conn.ID] = events(guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-05"))
	_, err = engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	raw, _ := store.FindRawEvent(context.Background(), conn.ID, "abnb-2")
	require.NotNil(t, raw)
	assert.Equal(t, models.EventCancelled, raw.Status)

	cancelled, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-2")
	require.NotNil(t, cancelled)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.False(t, cancelled.ConflictDetected)

	kept, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	require.NotNil(t, kept)
	assert.Equal(t, models.BookingConfirmed, kept.Status)
}

func TestSyncUnit_NoChangesNeverCancels(t *testing.T) {
	store := newMemStore()
	conn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-05")),
	}}
	engine := newTestEngine(store, factory)

	_, err := engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	// A 304-style short-circuit carries no events. That must not be read as
	// "the feed is now empty".
	factory.pulls[conn.ID] = func() (*channel.PullResult, error) {
		return &channel.PullResult{NoChanges: true, Log: "no changes (304 Not Modified)"}, nil
	}
	result, err := engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	b, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	require.NotNil(t, b)
	assert.Equal(t, models.BookingConfirmed, b.Status)
}

func TestSyncUnit_ManualFieldProtection(t *testing.T) {
	store := newMemStore()
	conn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(feed.Event{
			UID:         "abnb-1",
			Summary:     "Reserved - Jane Miller",
			Description: "Payout: EUR 500.00",
			Start:       "2025-06-01",
			End:         "2025-06-05",
			Status:      models.EventConfirmed,
			Kind:        models.KindBooking,
		}),
	}}
	engine := newTestEngine(store, factory)

	_, err := engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	// Operator corrects the price and tags it MANUAL.
	b, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	require.NotNil(t, b)
	assert.Equal(t, 500.0, b.TotalPrice)
	b.TotalPrice = 450
	b.Provenance[models.FieldTotalPrice] = models.OriginManual
	require.NoError(t, store.SaveBooking(context.Background(), b))

	_, err = engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	after, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	require.NotNil(t, after)
	assert.Equal(t, 450.0, after.TotalPrice, "manual price must survive the merge")
	assert.Equal(t, "Jane Miller", after.GuestName, "system fields still refresh")
}

func TestSyncUnit_AnonymousEventBecomesCalendarBlock(t *testing.T) {
	store := newMemStore()
	conn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(
			guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-05"),
			feed.Event{
				UID:    "abnb-2",
				Start:  "2025-06-03",
				End:    "2025-06-08",
				Status: models.EventConfirmed,
				Kind:   models.KindBooking,
			},
		),
	}}

	result, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Conflicts, "blocks never conflict with bookings")

	block, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-2")
	require.NotNil(t, block)
	assert.Equal(t, models.KindBlock, block.Kind)
	assert.Equal(t, "calendar", block.Source)
	assert.False(t, block.ConflictDetected)
}

func TestSyncUnit_MinimalBookingMode(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.SetSetting(context.Background(), models.SettingMinimalBookings, "true"))
	conn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(feed.Event{
			UID:    "abnb-1",
			Start:  "2025-06-01",
			End:    "2025-06-05",
			Status: models.EventConfirmed,
			Kind:   models.KindBooking,
		}),
	}}

	_, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	b, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	require.NotNil(t, b)
	assert.Equal(t, models.KindBooking, b.Kind)
	assert.NotEmpty(t, b.Locator, "minimal bookings get a generated locator")
	assert.Equal(t, "airbnb", b.Source)
}

func TestSyncUnit_ConnectionFailureIsIsolated(t *testing.T) {
	store := newMemStore()
	blocked := addConnection(t, store, 1, "booking")
	healthy := addConnection(t, store, 1, "airbnb")

	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		blocked.ID: func() (*channel.PullResult, error) { return nil, channel.ErrBlocked },
		healthy.ID: events(guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-05")),
	}}

	result, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "booking")

	conn, _ := store.GetConnection(context.Background(), blocked.ID)
	assert.Equal(t, models.SyncBlocked, conn.LastStatus)
	assert.NotNil(t, conn.LastSyncAt)

	b, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	assert.NotNil(t, b, "the healthy connection still reconciles")
}

func TestSyncUnit_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect models.SyncStatus
	}{
		{"offline", channel.ErrOffline, models.SyncOffline},
		{"token expired", channel.ErrTokenExpired, models.SyncTokenExpired},
		{"blocked", channel.ErrBlocked, models.SyncBlocked},
		{"invalid content", channel.ErrInvalidContent, models.SyncError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, statusForPullError(tt.err))
		})
	}
}

func TestSyncUnit_TokenExpiredSkippedOnScheduledCycles(t *testing.T) {
	store := newMemStore()
	conn := addConnection(t, store, 1, "booking-api")
	stored := store.connections[conn.ID]
	stored.LastStatus = models.SyncTokenExpired
	store.connections[conn.ID] = stored

	calls := 0
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: func() (*channel.PullResult, error) {
			calls++
			return nil, channel.ErrTokenExpired
		},
	}}
	engine := newTestEngine(store, factory)

	_, err := engine.SyncUnit(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "scheduled cycles must not retry expired tokens")

	_, err = engine.SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "manual triggers still retry")
}

func TestSyncUnit_ProvisionalLinkage(t *testing.T) {
	store := newMemStore()
	conn := addConnection(t, store, 1, "airbnb")
	prov := &models.ProvisionalBooking{
		Provider:      "airbnb",
		ReservationID: "HMABC123",
		UnitHint:      1,
		CheckIn:       "2025-06-01",
		CheckOut:      "2025-06-05",
		GuestName:     "Jane Miller",
		TotalPrice:    480,
	}
	prov.Status = models.ProvisionalPending
	require.NoError(t, store.SaveProvisional(context.Background(), prov))

	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(feed.Event{
			UID:         "abnb-1",
			Description: "Reservation HMABC123",
			Start:       "2025-06-01",
			End:         "2025-06-05",
			Status:      models.EventConfirmed,
			Kind:        models.KindBooking,
		}),
	}}

	_, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	b, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	require.NotNil(t, b)
	assert.Equal(t, "Jane Miller", b.GuestName, "linkage supplies the guest the feed omitted")
	assert.Equal(t, 480.0, b.TotalPrice)
	assert.Equal(t, models.KindBooking, b.Kind, "an enriched event is not demoted to a block")
	require.NotNil(t, b.ProvisionalID)

	linked := store.provisionals[prov.ID]
	assert.Equal(t, models.ProvisionalConfirmed, linked.Status)
	require.NotNil(t, linked.RawEventID)
}

func TestSyncUnit_GhostProvisionalPromotion(t *testing.T) {
	store := newMemStore()
	prov := &models.ProvisionalBooking{
		Provider:   "booking",
		UnitHint:   1,
		CheckIn:    "2025-08-01",
		CheckOut:   "2025-08-04",
		GuestName:  "John Smith",
		TotalPrice: 300,
		Status:     models.ProvisionalPending,
	}
	require.NoError(t, store.SaveProvisional(context.Background(), prov))

	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){}}
	_, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)

	b, _ := store.FindBookingByProvisional(context.Background(), 1, prov.ID)
	require.NotNil(t, b, "an unmatched ghost still materializes")
	assert.Equal(t, "pending sync", b.Source)
	assert.Equal(t, "John Smith", b.GuestName)
	assert.Equal(t, "2025-08-01", b.CheckIn)
}

func TestSyncUnit_BlockDoesNotMaskDoubleBooking(t *testing.T) {
	store := newMemStore()
	block := &models.CanonicalBooking{
		UnitID:   1,
		CheckIn:  "2025-06-01",
		CheckOut: "2025-06-05",
		Status:   models.BookingConfirmed,
		Kind:     models.KindBlock,
		Source:   "manual",
	}
	require.NoError(t, store.SaveBooking(context.Background(), block))

	bookingConn := addConnection(t, store, 1, "booking")
	airbnbConn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		bookingConn.ID: events(guestEvent("bdc-1", "Jane Miller", "2025-06-01", "2025-06-05")),
		airbnbConn.ID:  events(guestEvent("abnb-1", "John Smith", "2025-06-01", "2025-06-05")),
	}}

	result, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Conflicts, "the block folds first but must not hide the double-booking")

	jane, _ := store.FindBookingByExternalRef(context.Background(), 1, "bdc-1")
	require.NotNil(t, jane)
	assert.True(t, jane.ConflictDetected)

	john, _ := store.FindBookingByExternalRef(context.Background(), 1, "abnb-1")
	require.NotNil(t, john)
	assert.True(t, john.ConflictDetected)

	kept, _ := store.GetBooking(context.Background(), block.ID)
	require.NotNil(t, kept)
	assert.False(t, kept.ConflictDetected, "blocks never carry the conflict flag")
}

func TestSyncUnit_ManualBookingOutranksFeed(t *testing.T) {
	store := newMemStore()
	manual := &models.CanonicalBooking{
		UnitID:    1,
		CheckIn:   "2025-06-01",
		CheckOut:  "2025-06-05",
		Status:    models.BookingConfirmed,
		Kind:      models.KindBooking,
		GuestName: "Walk-in Guest",
		Source:    "manual",
	}
	require.NoError(t, store.SaveBooking(context.Background(), manual))

	conn := addConnection(t, store, 1, "airbnb")
	factory := &stubFactory{pulls: map[uint]func() (*channel.PullResult, error){
		conn.ID: events(guestEvent("abnb-1", "Jane Miller", "2025-06-01", "2025-06-05")),
	}}

	result, err := newTestEngine(store, factory).SyncUnit(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Conflicts)

	kept, _ := store.GetBooking(context.Background(), manual.ID)
	require.NotNil(t, kept)
	assert.Equal(t, "Walk-in Guest", kept.GuestName, "the manual booking folds first and is never overwritten")
	assert.True(t, kept.ConflictDetected)
}
