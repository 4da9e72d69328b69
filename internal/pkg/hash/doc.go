// Package hash provides the hex digests the vendor protocol is built on.
//
// The registration pin is turned into an idempotency token with MD5 and the
// device seed is proven to the server with SHA-256. Both share the Hash
// interface so callers do not care which digest they hold.
package hash
