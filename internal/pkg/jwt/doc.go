// Package jwt issues and verifies the HS512 bearer tokens that guard the
// HTTP API. Tokens carry only registered claims; the subject names the
// operator the token was issued to.
package jwt
