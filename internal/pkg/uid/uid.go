// Package uid generates the identifiers the client sends to the vendor and
// attaches to logs.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
