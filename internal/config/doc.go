// Package config loads, normalizes, and validates BiblioAccess configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BIBLIO_ADMIN_PASSWORD. The Config type centralizes every knob the daemon and
// CLI need, so directories, bind addresses, and OCR processor credentials are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
