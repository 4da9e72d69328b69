package clock

import "time"

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Fixed is a Clocker that always reports the same instant.
type Fixed struct {
	At time.Time
}

// NewFixedUnix returns a Fixed clock pinned to the given Unix second.
func NewFixedUnix(sec int64) *Fixed {
	return &Fixed{At: time.Unix(sec, 0).UTC()}
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time {
	return f.At
}

// Unix returns the clock's current time as Unix seconds, never negative.
func Unix(c Clocker) uint64 {
	sec := c.Now().Unix()
	if sec < 0 {
		return 0
	}

	return uint64(sec)
}
