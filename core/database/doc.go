// Package database handles the MySQL connection lifecycle.
//
// It provides a thin wrapper around GORM that assembles the DSN from the
// application configuration, sets connection pool limits, and verifies the
// connection with a bounded ping before handing it to callers.
//
// Schema migration for the sync engine's tables (units, channel connections,
// raw events, bookings, provisional bookings, settings) is performed by
// core/storage on startup via GORM AutoMigrate.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
