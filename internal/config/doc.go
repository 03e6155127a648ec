// Package config loads, normalizes, and validates webpconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the WEBPCONV_ENCODER environment
// override. The Config type centralizes the encoder parameters, extension
// filter, worker count, and state directories so the CLI resolves them in one
// pass before any batch starts.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
