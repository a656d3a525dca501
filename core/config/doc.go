// Package config provides configuration management for the sync service.
//
// It utilizes Viper for loading configuration from environment variables and a
// local .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details
//   - Log: Logging level and format
//   - Sync: sync interval, proxy base URL, HTTP timeout
//
// Defaults are declared as `default` struct tags next to the fields themselves
// and bound into Viper by reflection, so every key is registered for
// AutomaticEnv even when unset.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
