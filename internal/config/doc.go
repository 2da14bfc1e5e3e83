// Package config loads client configuration from environment variables,
// optionally overlaid with a YAML file.
//
// Every setting has a sensible default for local development, so a bare
// Load() against a stock SurrealDB instance works out of the box. LoadFile
// layers a YAML document on top for deployments that prefer files over
// environment variables; file values win where set.
//
// Validate reports every problem at once rather than stopping at the first,
// so a misconfigured deployment surfaces all its mistakes in one run.
package config
