// Package config defines the application's configuration structure and
// loading. Configuration comes from environment variables (prefix
// REDINK) layered over an optional YAML file, and is validated before
// the application starts.
package config
