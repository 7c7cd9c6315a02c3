// Package config loads, normalizes, and validates snapvault configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: state/log directories, the destination mapping rules whose
// fingerprint is recorded with every run, verification algorithm selection,
// and cleanup gating defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical values, and clear validation errors.
package config
