// Package otp generates counter-based one-time passwords (HOTP, RFC 4226).
//
// Time-based codes are HOTP over floor(unix/period). The caller picks the
// period and digit count, so the same engine serves 10-second device codes and
// 30-second service codes. DecodeSecret turns the textual seeds stored by
// authenticator apps into key bytes.
package otp
