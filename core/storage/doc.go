// Package storage provides the persistence layer for the sync engine.
//
// It exposes the Store interface consumed by the reconciliation engine and the
// HTTP features, with a GORM/MySQL implementation and a testify mock (see
// core/storage/mocks) for unit tests.
//
// # Semantics
//
//   - Lookup methods (GetUnit, GetConnection, FindRawEvent,
//     FindBookingByExternalRef, ...) return (nil, nil) when no row matches,
//     so callers distinguish "absent" from infrastructure failure.
//   - DeleteConnection cascades the connection's raw events in one
//     transaction; the caller is responsible for re-reconciling the unit so
//     derived canonical bookings are corrected.
//   - SaveRawEvent / SaveBooking / SaveProvisional upsert by primary key.
//
// # Usage
//
//	store, err := storage.New(db)
//	conns, err := store.ListEnabledConnections(ctx, unitID)
package storage
