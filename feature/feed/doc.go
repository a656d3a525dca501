// Package feed parses iCalendar (RFC 5545-like) feed documents into
// normalized events.
//
// The parser is deliberately tolerant: OTA feeds are loosely structured, so
// individual malformed events are dropped with a note instead of failing the
// whole document. Only the fields the sync engine consults are extracted
// (UID, SUMMARY, DESCRIPTION, DTSTART, DTEND, DURATION, STATUS/METHOD,
// RRULE); everything else is ignored.
//
// # Normalization rules
//
//   - Folded lines are unfolded before field extraction.
//   - Dates normalize to date-only YYYY-MM-DD strings.
//   - A missing DTEND is computed from DURATION (fractions round up to whole
//     days) or defaults to a 1-night stay.
//   - A missing UID is synthesized from start+end+summary and flagged.
//   - RRULE is recorded as a boolean; recurrence expansion is a non-goal.
//   - Events whose summary is empty or a known placeholder ("not available",
//     "blocked", ...) classify as blocks rather than bookings.
package feed
