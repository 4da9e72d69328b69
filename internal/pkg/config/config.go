// Package config reads runtime settings by dotted key (e.g. "vendor.base_url").
//
// Values come from an optional YAML file, environment variables, and
// registered defaults, in that order of precedence, lowest last.
package config

import (
	"io"
	"time"
)

// Config is the read-only view of runtime settings.
type Config interface {
	io.Closer

	// GetString returns the value for key, or "" when unset.
	GetString(key string) string
	// GetBool returns the value for key, or false when unset.
	GetBool(key string) bool
	// GetInt returns the value for key, or 0 when unset.
	GetInt(key string) int
	// GetUint64 returns the value for key, or 0 when unset.
	GetUint64(key string) uint64
	// GetFloat64 returns the value for key, or 0 when unset.
	GetFloat64(key string) float64

	// GetSecond reads an integer value as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer value as a number of minutes.
	GetMinute(key string) time.Duration

	// GetBinary reads a base64 encoded value. Invalid base64 yields nil.
	GetBinary(key string) []byte
	// GetArray reads a comma separated value ("a,b,c") or a YAML list.
	GetArray(key string) []string
}
