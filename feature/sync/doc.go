// Package sync implements the channel synchronization engine and its
// scheduler.
//
// One sync cycle for a unit runs two phases. Ingestion pulls every enabled
// connection through its transport adapter, upserts raw events by external
// identifier and marks events absent from a full pull as cancelled; a
// connection failure is recorded on the connection and never aborts its
// siblings. Reconciliation then folds raw events, standing manual bookings
// and unlinked provisional signals into canonical bookings, ordered by
// channel priority, with collision detection: two confirmed real bookings on
// overlapping dates are both flagged as conflicts, while blocks eclipse
// silently. Fields edited by an operator carry a MANUAL provenance tag and
// survive every merge.
//
// The scheduler arms a periodic timer (15/30/60 minutes, or "manual" for
// none), stops it while offline, and iterates units strictly sequentially so
// shared proxy infrastructure is never hit in parallel.
//
// # HTTP Endpoints
//
//   - POST /sync : manual cycle (all units, or ?unit=<id>)
//   - GET /sync/status : scheduler state, interval and network flag
//   - PUT /sync/interval : change the interval
//   - POST /network : record online/offline state
//   - GET/PUT /settings/minimal-bookings : anonymous-feed booking toggle
package sync
