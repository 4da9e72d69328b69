package entity

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotInitialized           = errors.New("authenticator: device is not initialized")
	ErrDeviceAlreadyRegistered        = errors.New("authenticator: a device is already registered")
	ErrTokenNotInitialized            = errors.New("authenticator: authenticator token is not initialized")
	ErrBackupPasswordRequired         = errors.New("authenticator: backup password is required")
	ErrAccountRegistrationUnsupported = errors.New("authenticator: account registration is not supported")
	ErrUnknownUserStatus              = errors.New("authenticator: unknown user status")
	ErrMissingRegistrationPIN         = errors.New("authenticator: registration accepted without pin")
	ErrRegistrationTimeout            = errors.New("authenticator: registration was not approved in time")
	ErrInvalidMovingFactor            = errors.New("authenticator: invalid moving factor")
	ErrInvalidDeviceSecret            = errors.New("authenticator: device secret is not valid hex")
	ErrDamagedToken                   = errors.New("authenticator: authenticator token is damaged")
	ErrTransport                      = errors.New("authenticator: vendor transport failure")
	ErrTokenNotFound                  = errors.New("authenticator: no token matches the name")
)

// DamagedTokenCode is the vendor error_code reported for damaged tokens.
const DamagedTokenCode = "60043"

// APIError is a vendor response that could not be used: a non-2xx status
// or a 2xx body that failed to decode.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authenticator: vendor responded %d: %v: %s", e.StatusCode, e.Err, e.Body)
	}

	return fmt.Sprintf("authenticator: vendor responded %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// TokenOp names the token step that failed.
type TokenOp string

const (
	TokenOpDecrypt  TokenOp = "decrypt"
	TokenOpGenerate TokenOp = "generate"
)

// TokenError reports a crypto failure for one service. The message carries
// the service name only, never key or seed material.
type TokenError struct {
	ServiceName string
	Op          TokenOp
	Err         error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("authenticator: failed to %s seed for service %q: %v", e.Op, e.ServiceName, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}
