// Package models defines the persistent entities of the sync engine.
//
// The canonical date model is date-only: check-in/check-out and event
// start/end dates are stored as YYYY-MM-DD strings, which compare correctly
// with plain string ordering. Time-of-day is not modeled.
//
// # Entities
//
//   - Unit: a rental unit.
//   - ChannelConnection: one external feed for one unit, including sync
//     status and HTTP change-detection metadata.
//   - RawEvent: a normalized calendar occurrence pulled from a feed.
//   - CanonicalBooking: the authoritative reconciled booking/block record,
//     carrying a per-field provenance map protecting manual edits.
//   - ProvisionalBooking: an out-of-band reservation signal awaiting linkage.
//   - Setting: key/value application settings.
package models
