// Package cache provides file-based caching of reviewer responses.
//
// Each entry is a JSON file named by the SHA-256 of its key. Keys are built
// with [BuildOpinionKey] from the provider, model, persona, dimension, and a
// digest of the evidence shown to the reviewer, so any change in the
// deliberation inputs produces a fresh cache slot. Entries expire after a
// configurable TTL and are removed lazily on read.
package cache
