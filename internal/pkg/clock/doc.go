// Package clock provides a tiny time abstraction.
//
// OTP windows and time synchronization depend on the current Unix time, so
// callers take a Clocker instead of calling time.Now directly. Tests swap in
// Fixed to pin a deterministic instant.
package clock
