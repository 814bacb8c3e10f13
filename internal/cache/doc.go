// Package cache keeps parsed reports keyed by the SHA-256 of their text so
// that reparsing an unchanged compiler output is skipped.
package cache
