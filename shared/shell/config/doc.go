// Package config loads the service configuration and builds the infrastructure it describes:
// database connection pools for the three supported adapters, the slog logger and the
// OpenTelemetry providers.
package config
