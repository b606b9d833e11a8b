// Package config provides configuration management for molard.
//
// Two kinds of configuration live here.
//
// # Settings
//
// Settings are the static knobs of the local server topology: where the
// sidecar resources live, which ports the database engine and the API backend
// use, credentials handed to the backend, and the timeouts of the startup and
// sign-in flows. They are loaded and merged in layers, later layers overriding
// earlier ones:
//
//  1. Defaults (compiled in)
//  2. User configuration (~/.config/molard/config.yaml)
//  3. Project configuration (./.molard/config.yaml)
//
// A single explicit file can replace layers 2 and 3 with LoadSettingsFromPath.
//
//	resourceDir: /opt/molarplus/resources
//	dataDir: /var/lib/molarplus/postgres-data
//	database:
//	  port: 5432
//	  name: bdent
//	  user: postgres
//	backend:
//	  port: 8000
//	  binary: backend
//	auth:
//	  callbackPort: 8080
//	  timeout: 5m
//
// # Store
//
// The Store is the persisted key/value state that the GUI reads and writes:
// the application mode ("server" or "client"), the remote server IP used in
// client mode and the first-run flag. Writes are staged in memory and made
// durable by Save, which replaces the file atomically.
package config
