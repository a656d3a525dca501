// Package channel implements channel identity, priority resolution and the
// per-channel transport adapters.
//
// # Transport
//
// The Transport hands out an Adapter per connection: a generic iCal-over-HTTP
// adapter for feed channels, and a stub adapter for channels with official
// push/pull APIs (not implemented yet). The iCal adapter supports two
// strategies:
//
//   - direct: fetch the feed URL as-is.
//   - proxied: route through a rotating pool of CORS-bypass intermediaries,
//     rotating on block pages, 5xx responses and network errors, with a
//     single direct fallback once the pool is exhausted.
//
// Conditional fetches (If-None-Match/304) and content-hash comparison
// short-circuit unchanged feeds to a "no changes" result.
//
// # Priority
//
// Channel priorities are the tie-breaker of reconciliation: higher wins.
// The synthetic "manual" pseudo-channel always outranks external channels;
// a connection may override its channel default with an explicit 0-100 value.
//
// # Components
//
//   - Service: connection CRUD; deletion cascades raw events and triggers a
//     unit re-reconciliation through the injected Resyncer.
//   - Handler: exposes the /connections HTTP endpoints.
//   - Feature: registers the feature with the application loader.
package channel
