// Package config loads the lendingctl configuration with viper and builds the infrastructure it
// describes: database connections for the journal, the base slog logger and the OpenTelemetry
// providers.
//
// Precedence, highest first: bound command line flags, LENDING_* environment variables
// (dots become underscores, e.g. LENDING_JOURNAL_BACKEND), the YAML config file, defaults.
package config
