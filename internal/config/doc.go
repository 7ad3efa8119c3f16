// Package config loads, normalizes, and validates mediavault configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEDIAVAULT_API_TOKEN and MEDIAVAULT_NATS_URL. The Config type centralizes
// every knob the daemon and CLI need: storage paths, match cascade
// thresholds, retention windows, and external collaborator endpoints.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
