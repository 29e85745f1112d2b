// Package config loads and merges tribunal configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (TRIBUNAL_PROVIDER, TRIBUNAL_MODEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/tribunal/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [SetField] to update a single
// key.
package config
