package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"rental-sync/core/storage"
	"rental-sync/core/storage/models"
	"rental-sync/core/utils"
	"rental-sync/feature/booking"
	"rental-sync/feature/channel"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine runs the per-unit synchronization state machine: ingest every
// enabled connection, then fold raw events, manual bookings and ghost
// provisionals into canonical bookings with collision detection.
type Engine struct {
	store    storage.Store
	adapters channel.Factory
	logger   *zap.Logger
}

// NewEngine creates the reconciliation engine.
func NewEngine(store storage.Store, adapters channel.Factory, logger *zap.Logger) *Engine {
	return &Engine{store: store, adapters: adapters, logger: logger}
}

// SyncUnit runs one full sync cycle for a unit. One connection's failure
// never aborts the others; the fold phase always runs against whatever raw
// events are persisted. Scheduled cycles skip connections stuck in
// TOKEN_EXPIRED until a human intervenes; manual triggers retry them.
func (e *Engine) SyncUnit(ctx context.Context, unitID uint, scheduled bool) (*Result, error) {
	result := &Result{Errors: []string{}}

	conns, err := e.store.ListEnabledConnections(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}

	for i := range conns {
		conn := &conns[i]
		if scheduled && conn.LastStatus == models.SyncTokenExpired {
			e.logger.Info("Skipping token-expired connection on scheduled cycle",
				zap.Uint("connection_id", conn.ID),
				zap.String("channel", conn.Channel),
			)
			continue
		}
		e.ingestConnection(ctx, conn, result)
	}

	if err := e.reconcile(ctx, unitID, result); err != nil {
		return result, err
	}
	return result, nil
}

// ingestConnection pulls one connection's feed and persists its raw events,
// recording the outcome on the connection itself.
func (e *Engine) ingestConnection(ctx context.Context, conn *models.ChannelConnection, result *Result) {
	adapter := e.adapters.ForConnection(conn)
	pull, err := adapter.Pull(ctx, conn)

	now := time.Now()
	conn.LastSyncAt = &now

	if err != nil {
		conn.LastStatus = statusForPullError(err)
		conn.LastLog = err.Error()
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", connectionLabel(conn), err))
		e.logger.Warn("Connection pull failed",
			zap.Uint("connection_id", conn.ID),
			zap.String("channel", conn.Channel),
			zap.String("status", string(conn.LastStatus)),
			zap.Error(err),
		)
		if uerr := e.store.UpdateConnection(ctx, conn); uerr != nil {
			e.logger.Error("Persisting connection status failed", zap.Error(uerr))
		}
		return
	}

	result.Processed++

	// Implicit cancellation is only valid against a full event set. A
	// short-circuited pull (304, hash match) would wrongly cancel everything.
	if !pull.NoChanges {
		e.ingestEvents(ctx, conn, pull, result)
	}

	conn.LastStatus = models.SyncOK
	conn.LastLog = pull.Log
	if pull.Hash != "" {
		conn.ContentHash = pull.Hash
	}
	if pull.ETag != "" {
		conn.ETag = pull.ETag
	}
	if pull.LastModified != "" {
		conn.LastModified = pull.LastModified
	}
	if err := e.store.UpdateConnection(ctx, conn); err != nil {
		e.logger.Error("Persisting connection status failed", zap.Error(err))
	}
}

// ingestEvents upserts the pulled events by external identifier and marks
// previously-active events absent from this pull as cancelled.
func (e *Engine) ingestEvents(ctx context.Context, conn *models.ChannelConnection, pull *channel.PullResult, result *Result) {
	seen := make(map[string]struct{}, len(pull.Events))

	for i := range pull.Events {
		ev := &pull.Events[i]
		seen[ev.UID] = struct{}{}

		raw, err := e.store.FindRawEvent(ctx, conn.ID, ev.UID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: storing event %s: %v", connectionLabel(conn), ev.UID, err))
			continue
		}
		if raw == nil {
			raw = &models.RawEvent{
				ConnectionID: conn.ID,
				UnitID:       conn.UnitID,
				ExternalID:   ev.UID,
			}
		}

		raw.FallbackUID = ev.FallbackUID
		raw.StartDate = ev.Start
		raw.EndDate = ev.End
		raw.Status = ev.Status
		raw.Summary = ev.Summary
		raw.Description = ev.Description
		raw.Raw = ev.Raw
		raw.Kind = ev.Kind

		if err := e.store.SaveRawEvent(ctx, raw); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: storing event %s: %v", connectionLabel(conn), ev.UID, err))
		}
	}

	existing, err := e.store.ListRawEventsByConnection(ctx, conn.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: listing stored events: %v", connectionLabel(conn), err))
		return
	}
	for i := range existing {
		ev := &existing[i]
		if _, ok := seen[ev.ExternalID]; ok || ev.Status == models.EventCancelled {
			continue
		}
		ev.Status = models.EventCancelled
		if err := e.store.SaveRawEvent(ctx, ev); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: cancelling event %s: %v", connectionLabel(conn), ev.ExternalID, err))
			continue
		}
		e.logger.Info("Event implicitly cancelled",
			zap.Uint("connection_id", conn.ID),
			zap.String("external_id", ev.ExternalID),
		)
	}
}

// candidate is one entry of the fold phase's working set.
type candidate struct {
	priority int

	checkIn  string
	checkOut string

	status    models.BookingStatus
	kind      models.EventKind
	guestName string
	amount    float64
	summary   string
	source    string
	locator   string

	externalRef   string
	rawEventID    *uint
	connectionID  *uint
	provisionalID *uint

	// manual points at the standing manual booking this candidate represents;
	// nil for feed- and provisional-derived candidates.
	manual *models.CanonicalBooking
}

// occupied is one already-accepted date range of the collision registry.
type occupied struct {
	checkIn     string
	checkOut    string
	realBooking bool
	bookingID   uint
}

// reconcile folds the unit's candidate set into canonical bookings.
func (e *Engine) reconcile(ctx context.Context, unitID uint, result *Result) error {
	conns, err := e.store.ListConnections(ctx, unitID)
	if err != nil {
		return fmt.Errorf("listing connections: %w", err)
	}
	connByID := make(map[uint]*models.ChannelConnection, len(conns))
	for i := range conns {
		connByID[conns[i].ID] = &conns[i]
	}

	rawEvents, err := e.store.ListActiveRawEvents(ctx, unitID)
	if err != nil {
		return fmt.Errorf("listing raw events: %w", err)
	}
	manuals, err := e.store.ListManualBookings(ctx, unitID)
	if err != nil {
		return fmt.Errorf("listing manual bookings: %w", err)
	}
	pending, err := e.store.ListPendingProvisionals(ctx, unitID)
	if err != nil {
		return fmt.Errorf("listing provisionals: %w", err)
	}

	minimalRaw, err := e.store.GetSetting(ctx, models.SettingMinimalBookings)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	minimal := utils.ToBool(minimalRaw)

	linked := make(map[uint]struct{})
	candidates := make([]candidate, 0, len(rawEvents)+len(manuals)+len(pending))

	for i := range rawEvents {
		ev := &rawEvents[i]
		conn := connByID[ev.ConnectionID]
		if conn == nil {
			continue
		}
		cand := e.eventCandidate(ctx, ev, conn, pending, linked, minimal)
		candidates = append(candidates, cand)
	}

	for i := range manuals {
		m := &manuals[i]
		if m.Status == models.BookingCancelled {
			continue
		}
		candidates = append(candidates, candidate{
			priority:  channel.PriorityManual,
			checkIn:   m.CheckIn,
			checkOut:  m.CheckOut,
			status:    m.Status,
			kind:      m.Kind,
			guestName: m.GuestName,
			amount:    m.TotalPrice,
			summary:   m.Summary,
			source:    channel.Manual,
			manual:    m,
		})
	}

	// Ghost provisionals: confirmed-like signals never matched to a raw event
	// still occupy their dates so future collisions are caught.
	for i := range pending {
		p := &pending[i]
		if _, consumed := linked[p.ID]; consumed || p.RawEventID != nil {
			continue
		}
		provisionalID := p.ID
		candidates = append(candidates, candidate{
			priority:      channel.Priority(p.Provider),
			checkIn:       p.CheckIn,
			checkOut:      p.CheckOut,
			status:        models.BookingConfirmed,
			kind:          models.KindBooking,
			guestName:     p.GuestName,
			amount:        p.TotalPrice,
			summary:       p.GuestName,
			source:        "pending sync",
			provisionalID: &provisionalID,
		})
	}

	// Higher-priority and earlier-starting candidates fold first.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].checkIn < candidates[j].checkIn
	})

	e.fold(ctx, unitID, candidates, result)

	e.applyExplicitCancellations(ctx, unitID, conns, result)
	return nil
}

// eventCandidate turns a raw event into a fold candidate: extract guest and
// amount from free text, link a pending provisional, and demote anonymous
// events to calendar blocks unless minimal bookings are enabled.
func (e *Engine) eventCandidate(ctx context.Context, ev *models.RawEvent, conn *models.ChannelConnection, pending []models.ProvisionalBooking, linked map[uint]struct{}, minimal bool) candidate {
	eventID := ev.ID
	connID := ev.ConnectionID

	cand := candidate{
		priority:     channel.ConnectionPriority(conn),
		checkIn:      ev.StartDate,
		checkOut:     ev.EndDate,
		status:       models.BookingConfirmed,
		kind:         ev.Kind,
		guestName:    booking.ExtractGuestName(ev.Summary),
		amount:       booking.ExtractAmount(ev.Description),
		summary:      ev.Summary,
		source:       channel.Normalize(conn.Channel),
		externalRef:  ev.ExternalID,
		rawEventID:   &eventID,
		connectionID: &connID,
	}
	if ev.Status == models.EventTentative {
		cand.status = models.BookingProvisional
	}
	if cand.amount == 0 {
		cand.amount = booking.ExtractAmount(ev.Summary)
	}

	// Provisional linkage runs before the anonymity check so a matched signal
	// can supply the guest name the feed omitted.
	if p := matchProvisional(ev, pending, linked); p != nil {
		if cand.guestName == "" && p.GuestName != "" {
			cand.guestName = p.GuestName
		}
		if cand.amount <= 0 && p.TotalPrice > 0 {
			cand.amount = p.TotalPrice
		}
		p.RawEventID = &eventID
		p.Status = models.ProvisionalConfirmed
		if err := e.store.SaveProvisional(ctx, p); err != nil {
			e.logger.Error("Confirming provisional failed", zap.Uint("provisional_id", p.ID), zap.Error(err))
		}
		provisionalID := p.ID
		cand.provisionalID = &provisionalID
		linked[p.ID] = struct{}{}
	}

	if cand.guestName == "" && cand.amount <= 0 && cand.kind == models.KindBooking {
		if minimal {
			cand.locator = newLocator()
		} else {
			// Anonymous events become manual-priority calendar blocks so they
			// are never eclipsed by lower-quality feeds.
			cand.kind = models.KindBlock
			cand.priority = channel.PriorityManual
			cand.source = "calendar"
		}
	}
	return cand
}

// matchProvisional finds a pending provisional for the event via an existing
// link, the reservation id appearing in the event text, or exact dates.
func matchProvisional(ev *models.RawEvent, pending []models.ProvisionalBooking, linked map[uint]struct{}) *models.ProvisionalBooking {
	for i := range pending {
		p := &pending[i]
		if _, consumed := linked[p.ID]; consumed {
			continue
		}
		if p.RawEventID != nil {
			if *p.RawEventID == ev.ID {
				return p
			}
			continue
		}
		if p.ReservationID != "" &&
			(strings.Contains(ev.Summary, p.ReservationID) || strings.Contains(ev.Description, p.ReservationID)) {
			return p
		}
		if p.CheckIn == ev.StartDate && p.CheckOut == ev.EndDate {
			return p
		}
	}
	return nil
}

// fold upserts candidates in priority order, maintaining the collision
// registry of accepted date ranges.
func (e *Engine) fold(ctx context.Context, unitID uint, candidates []candidate, result *Result) {
	accepted := make([]occupied, 0, len(candidates))

	for i := range candidates {
		cand := &candidates[i]

		target, err := e.targetBooking(ctx, unitID, cand)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("resolving booking for %s: %v", cand.source, err))
			continue
		}
		if target == nil {
			target = &models.CanonicalBooking{UnitID: unitID, Provenance: models.Provenance{}}
		}

		e.mergeBooking(target, cand)
		realBooking := booking.IsConfirmedBooking(target)

		// A range can overlap several accepted entries at once. A real-booking
		// overlap must win the scan, or a block covering the same dates would
		// mask a genuine double-booking.
		var collision *occupied
		for j := range accepted {
			a := &accepted[j]
			if target.ID != 0 && a.bookingID == target.ID {
				continue
			}
			if !booking.Overlaps(target.CheckIn, target.CheckOut, a.checkIn, a.checkOut) {
				continue
			}
			if collision == nil {
				collision = a
			}
			if a.realBooking {
				collision = a
				break
			}
		}

		// Only two confirmed real bookings conflict. Blocks eclipse and are
		// eclipsed silently.
		conflict := collision != nil && realBooking && collision.realBooking
		target.ConflictDetected = conflict

		if conflict {
			result.Conflicts++
			e.flagCollidingBooking(ctx, collision.bookingID, result)
		}

		if err := e.store.SaveBooking(ctx, target); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("saving booking for %s: %v", cand.source, err))
			continue
		}

		accepted = append(accepted, occupied{
			checkIn:     target.CheckIn,
			checkOut:    target.CheckOut,
			realBooking: realBooking,
			bookingID:   target.ID,
		})
	}
}

// flagCollidingBooking marks the already-accepted side of a conflict,
// reviving it if a previous cycle had cancelled it.
func (e *Engine) flagCollidingBooking(ctx context.Context, bookingID uint, result *Result) {
	other, err := e.store.GetBooking(ctx, bookingID)
	if err != nil || other == nil {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("loading colliding booking %d: %v", bookingID, err))
		}
		return
	}
	if other.ConflictDetected && other.Status != models.BookingCancelled {
		return
	}
	other.ConflictDetected = true
	if other.Status == models.BookingCancelled {
		other.Status = models.BookingConfirmed
	}
	if err := e.store.SaveBooking(ctx, other); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("flagging colliding booking %d: %v", bookingID, err))
	}
}

// targetBooking resolves the canonical booking a candidate updates, if any.
func (e *Engine) targetBooking(ctx context.Context, unitID uint, cand *candidate) (*models.CanonicalBooking, error) {
	if cand.manual != nil {
		return cand.manual, nil
	}
	if cand.externalRef != "" {
		b, err := e.store.FindBookingByExternalRef(ctx, unitID, cand.externalRef)
		if err != nil || b != nil {
			return b, err
		}
	}
	if cand.provisionalID != nil {
		return e.store.FindBookingByProvisional(ctx, unitID, *cand.provisionalID)
	}
	return nil, nil
}

// mergeBooking writes candidate values into the booking, honoring the
// provenance map: MANUAL fields are never overwritten. Linkage fields are
// always refreshed.
func (e *Engine) mergeBooking(target *models.CanonicalBooking, cand *candidate) {
	p := target.Provenance

	if !p.IsManual(models.FieldCheckIn) {
		target.CheckIn = cand.checkIn
	}
	if !p.IsManual(models.FieldCheckOut) {
		target.CheckOut = cand.checkOut
	}
	if !p.IsManual(models.FieldGuestName) {
		target.GuestName = cand.guestName
	}
	if !p.IsManual(models.FieldTotalPrice) && cand.amount > 0 {
		target.TotalPrice = cand.amount
	}
	if !p.IsManual(models.FieldStatus) {
		target.Status = cand.status
	}
	if !p.IsManual(models.FieldKind) {
		target.Kind = cand.kind
	}
	if !p.IsManual(models.FieldSummary) {
		target.Summary = cand.summary
	}
	if !p.IsManual(models.FieldSource) {
		target.Source = cand.source
	}
	if cand.locator != "" && target.Locator == "" {
		target.Locator = cand.locator
	}

	if cand.manual == nil {
		target.ExternalRef = cand.externalRef
		target.RawEventID = cand.rawEventID
		target.ConnectionID = cand.connectionID
		if cand.provisionalID != nil {
			target.ProvisionalID = cand.provisionalID
		}
	}
}

// applyExplicitCancellations propagates cancelled raw events to their linked
// canonical bookings and clears their conflict flags.
func (e *Engine) applyExplicitCancellations(ctx context.Context, unitID uint, conns []models.ChannelConnection, result *Result) {
	for i := range conns {
		events, err := e.store.ListRawEventsByConnection(ctx, conns[i].ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: listing stored events: %v", connectionLabel(&conns[i]), err))
			continue
		}
		for j := range events {
			ev := &events[j]
			if ev.Status != models.EventCancelled {
				continue
			}
			b, err := e.store.FindBookingByExternalRef(ctx, unitID, ev.ExternalID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("cancelling booking %s: %v", ev.ExternalID, err))
				continue
			}
			if b == nil || b.Status == models.BookingCancelled || b.Provenance.IsManual(models.FieldStatus) {
				continue
			}
			b.Status = models.BookingCancelled
			b.ConflictDetected = false
			if err := e.store.SaveBooking(ctx, b); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("cancelling booking %s: %v", ev.ExternalID, err))
			}
		}
	}
}

// statusForPullError maps the transport error taxonomy onto the connection
// status vocabulary.
func statusForPullError(err error) models.SyncStatus {
	switch {
	case errors.Is(err, channel.ErrOffline):
		return models.SyncOffline
	case errors.Is(err, channel.ErrTokenExpired):
		return models.SyncTokenExpired
	case errors.Is(err, channel.ErrBlocked):
		return models.SyncBlocked
	default:
		return models.SyncError
	}
}

// connectionLabel builds the human-readable connection name used in error
// lists and logs.
func connectionLabel(conn *models.ChannelConnection) string {
	if conn.Alias != "" {
		return fmt.Sprintf("%s (%s)", conn.Alias, conn.Channel)
	}
	return conn.Channel
}

// newLocator generates an operator-facing reference for minimal bookings
// created from anonymous feed events.
func newLocator() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
