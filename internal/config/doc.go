// Package config loads, normalizes, and validates brecimport configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BRECIMPORT_USER and BRECIMPORT_PASS. The Config type centralizes every knob
// the importer needs: the scan root, the container path rewrite, metadata
// source priority, and the settings for whichever catalog backend is selected.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enumerations, and clear validation errors.
package config
