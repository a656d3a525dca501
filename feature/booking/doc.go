// Package booking implements the booking-side business rules: classification,
// free-text extraction and the cancellation policy evaluator.
//
// # Classification
//
// A record counts as a confirmed booking when it is not a block, not
// provisional, and carries a real guest name or a positive amount. Everything
// else is a provisional block. Date ranges are half-open: the checkout day is
// not occupied, so back-to-back stays never overlap.
//
// # Extraction
//
// Guest names and amounts are scraped from feed free text with versioned,
// pure heuristics (see HeuristicVersion): the summary minus platform
// boilerplate yields the guest name, currency-labeled patterns in the
// description yield the amount. Both are best-effort enrichment, pinned by
// tests, and never the sole source of truth for financial records.
//
// # Cancellation policies
//
// EvaluateCancellation is a pure function over (policy, booking, timestamp)
// computing refund percent, refund amount, fee and a human-readable
// explanation. It assumes a fixed 15:00 check-in time because the canonical
// model is date-only.
//
// # HTTP Endpoints
//
//   - GET/POST/DELETE /units : unit management
//   - GET /units/:id/bookings : canonical bookings of a unit
//   - GET /units/:id/blocks/uncovered : actionable blocks
//   - POST /bookings/:id/cancellation-quote : policy evaluation
//   - POST /provisionals : out-of-band reservation signal ingest
package booking
