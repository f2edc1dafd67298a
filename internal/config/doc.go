// Package config loads, normalizes, and validates repitch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the REPITCH_API_BIND environment
// override. The Config type centralizes every knob the server and CLI need:
// artifact cache and downloads directories, the search-root registry file,
// external tool binaries, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
