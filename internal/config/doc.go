// Package config loads and validates discforge configuration.
//
// Configuration is stored as TOML. Loading applies repository defaults,
// merges the user's file on top, normalizes paths (tilde expansion,
// whitespace trimming), and validates cross-field constraints such as
// normalization targets and DVD capacity settings.
package config
