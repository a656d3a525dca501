package models

import "time"

// SyncStatus is the per-connection outcome vocabulary surfaced to the UI layer.
type SyncStatus string

const (
	SyncPending      SyncStatus = "PENDING"
	SyncOK           SyncStatus = "OK"
	SyncError        SyncStatus = "ERROR"
	SyncOffline      SyncStatus = "OFFLINE"
	SyncBlocked      SyncStatus = "BLOCKED"
	SyncTokenExpired SyncStatus = "TOKEN_EXPIRED"
)

// EventStatus is the lifecycle status of a raw event.
type EventStatus string

const (
	EventConfirmed EventStatus = "confirmed"
	EventCancelled EventStatus = "cancelled"
	EventTentative EventStatus = "tentative"
)

// EventKind distinguishes a real guest booking from an anonymous date closure.
type EventKind string

const (
	KindBooking EventKind = "booking"
	KindBlock   EventKind = "block"
)

// BookingStatus is the lifecycle status of a canonical booking.
type BookingStatus string

const (
	BookingConfirmed   BookingStatus = "confirmed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingProvisional BookingStatus = "provisional"
)

// ProvisionalStatus is the lifecycle status of a provisional booking.
type ProvisionalStatus string

const (
	ProvisionalPending   ProvisionalStatus = "pending"
	ProvisionalConfirmed ProvisionalStatus = "confirmed"
	ProvisionalCancelled ProvisionalStatus = "cancelled"
)

// Unit is one rental unit whose availability is reconciled across channels.
type Unit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChannelConnection identifies one external feed for one rental unit.
// Every sync attempt mutates its status, log and change-detection metadata.
type ChannelConnection struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UnitID uint `gorm:"index" json:"unit_id"`

	// Channel is the normalized channel identifier (e.g. "airbnb", "booking").
	Channel string `gorm:"size:64" json:"channel"`
	// Alias is an operator-chosen display name for the connection.
	Alias string `gorm:"size:255" json:"alias"`
	// URL is the channel-provided feed URL.
	URL string `gorm:"size:2048" json:"url"`
	// Enabled gates whether the connection participates in sync cycles.
	Enabled bool `gorm:"default:true" json:"enabled"`
	// Priority overrides the channel's default priority (0-100) when non-nil.
	Priority *int `json:"priority,omitempty"`
	// ForceDirect disables the proxied transport strategy for this connection.
	ForceDirect bool `json:"force_direct"`

	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	LastStatus SyncStatus `gorm:"size:32;default:PENDING" json:"last_status"`
	LastLog    string     `gorm:"type:text" json:"last_log"`

	// Change-detection metadata from the last successful pull.
	ContentHash  string `gorm:"size:64" json:"content_hash"`
	ETag         string `gorm:"size:255" json:"etag"`
	LastModified string `gorm:"size:64" json:"last_modified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RawEvent is one normalized occurrence pulled from a feed.
//
// Raw events are never deleted by sync: when an event disappears from a
// subsequent pull it is marked cancelled instead (implicit cancellation).
// Deletion only happens when the owning connection is deleted.
type RawEvent struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	ConnectionID uint `gorm:"index" json:"connection_id"`
	UnitID       uint `gorm:"index" json:"unit_id"`

	// ExternalID is the feed-native UID, or a content hash when absent.
	ExternalID string `gorm:"size:512;index" json:"external_id"`
	// FallbackUID marks external IDs synthesized from event content.
	FallbackUID bool `json:"fallback_uid"`

	// StartDate and EndDate are canonical YYYY-MM-DD strings (date-only model).
	StartDate string `gorm:"size:10" json:"start_date"`
	EndDate   string `gorm:"size:10" json:"end_date"`

	Status      EventStatus `gorm:"size:32" json:"status"`
	Summary     string      `gorm:"size:1024" json:"summary"`
	Description string      `gorm:"type:text" json:"description"`
	// Raw retains the source VEVENT text for audit.
	Raw  string    `gorm:"type:text" json:"raw"`
	Kind EventKind `gorm:"size:16" json:"kind"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanonicalBooking is the authoritative reservation/block record for a unit
// and date range, produced and maintained by the reconciliation engine.
type CanonicalBooking struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UnitID uint `gorm:"index" json:"unit_id"`

	CheckIn  string `gorm:"size:10" json:"check_in"`
	CheckOut string `gorm:"size:10" json:"check_out"`

	Status     BookingStatus `gorm:"size:32" json:"status"`
	Kind       EventKind     `gorm:"size:16" json:"kind"`
	TotalPrice float64       `json:"total_price"`
	GuestName  string        `gorm:"size:255" json:"guest_name"`
	GuestCount int           `json:"guest_count"`
	Summary    string        `gorm:"size:1024" json:"summary"`

	// Source is the originating source label ("airbnb", "manual", "calendar",
	// "pending sync", ...).
	Source string `gorm:"size:64" json:"source"`
	// Locator is the operator-facing booking reference. Generated for minimal
	// bookings created from anonymous feeds.
	Locator string `gorm:"size:64" json:"locator"`

	// ExternalRef links the booking to the raw event that produced it.
	// Empty for manual bookings. At most one booking exists per
	// (unit, external ref).
	ExternalRef   string `gorm:"size:512;index" json:"external_ref"`
	RawEventID    *uint  `json:"raw_event_id,omitempty"`
	ConnectionID  *uint  `json:"connection_id,omitempty"`
	ProvisionalID *uint  `gorm:"index" json:"provisional_id,omitempty"`

	ConflictDetected bool `json:"conflict_detected"`

	// Provenance records, per field, whether the value was set by a human
	// (MANUAL) or by the engine (SYSTEM). Manual fields are never overwritten
	// by the merge logic.
	Provenance Provenance `gorm:"type:json" json:"provenance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsManual reports whether the booking was entered by an operator rather than
// derived from a channel feed or a provisional signal.
func (b *CanonicalBooking) IsManual() bool {
	return b.ExternalRef == "" && b.ProvisionalID == nil
}

// ProvisionalBooking is a reservation signal ingested out-of-band (e.g. a
// forwarded confirmation email) awaiting linkage to a raw event or manual
// completion.
type ProvisionalBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Provider is the platform that sent the signal (e.g. "airbnb").
	Provider string `gorm:"size:64" json:"provider"`
	// ReservationID is the provider's reservation identifier.
	ReservationID string `gorm:"size:255;index" json:"reservation_id"`
	// UnitHint is the guessed rental unit, zero when unknown.
	UnitHint uint `gorm:"index" json:"unit_hint"`

	CheckIn  string `gorm:"size:10" json:"check_in"`
	CheckOut string `gorm:"size:10" json:"check_out"`

	GuestName  string  `gorm:"size:255" json:"guest_name"`
	TotalPrice float64 `json:"total_price"`
	// Confidence is the ingestion collaborator's extraction confidence (0-1).
	Confidence float64 `json:"confidence"`

	// RawEventID is set once the engine matches the signal to a raw event.
	RawEventID *uint             `json:"raw_event_id,omitempty"`
	Status     ProvisionalStatus `gorm:"size:32;default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Setting is a key/value application setting (e.g. the minimal-bookings
// feature toggle).
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"size:255" json:"value"`
}

// SettingMinimalBookings enables creating guest-less minimal bookings from
// anonymous feed events instead of demoting them to calendar blocks.
const SettingMinimalBookings = "minimal_bookings"
