package authy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/hash"
)

var errUnknownRegistrationState = errors.New("vendor: unknown registration state")

// CheckUserStatus asks which registration path the phone number takes.
func (c *Client) CheckUserStatus(ctx context.Context, phone, uuid string) (_ *entity.UserStatus, err error) {
	ctx, span := c.startSpan(ctx, "CheckUserStatus")
	defer func() { endSpan(span, err) }()

	q := c.baseQuery()
	q.Set("uuid", uuid)

	var resp userStatusResponse
	if err := c.do(ctx, call{
		endpoint: "user_status",
		method:   http.MethodGet,
		path:     "/users/" + url.PathEscape(phone) + "/status",
		query:    q,
	}, &resp); err != nil {
		return nil, err
	}

	branch := entity.UserBranchFromMessage(resp.Message)
	if branch == entity.UserBranchUnknown {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownUserStatus, resp.Message)
	}

	return &entity.UserStatus{
		AuthyID:      resp.AuthyID,
		DevicesCount: resp.DevicesCount,
		ForceOTT:     resp.ForceOTT,
		Branch:       branch,
	}, nil
}

// StartRegistration asks the other devices of the account to approve this
// one and returns the pending request id.
func (c *Client) StartRegistration(ctx context.Context, authyID uint64, signature, deviceName string) (_ string, err error) {
	ctx, span := c.startSpan(ctx, "StartRegistration")
	defer func() { endSpan(span, err) }()

	form := c.baseQuery()
	form.Set("via", "push")
	form.Set("signature", signature)
	form.Set("device_app", deviceApp)
	form.Set("device_name", deviceName)

	var resp startRegistrationResponse
	if err := c.do(ctx, call{
		endpoint: "registration_start",
		method:   http.MethodPost,
		path:     "/users/" + strconv.FormatUint(authyID, 10) + "/devices/registration/start",
		form:     form,
	}, &resp); err != nil {
		return "", err
	}

	return resp.RequestID, nil
}

// CheckRegistration polls the approval state of a pending request once.
func (c *Client) CheckRegistration(ctx context.Context, authyID uint64, requestID, signature string) (_ *entity.RegistrationStatus, err error) {
	ctx, span := c.startSpan(ctx, "CheckRegistration")
	defer func() { endSpan(span, err) }()

	q := c.baseQuery()
	q.Set("signature", signature)

	var resp registrationStatusResponse
	if err := c.do(ctx, call{
		endpoint: "registration_status",
		method:   http.MethodGet,
		path: "/users/" + strconv.FormatUint(authyID, 10) +
			"/devices/registration/" + url.PathEscape(requestID) + "/status",
		query: q,
	}, &resp); err != nil {
		return nil, err
	}

	switch entity.RegistrationState(resp.Status) {
	case entity.RegistrationAccepted:
		if resp.PIN == nil || *resp.PIN == "" {
			return nil, entity.ErrMissingRegistrationPIN
		}
		return &entity.RegistrationStatus{State: entity.RegistrationAccepted, PIN: *resp.PIN}, nil
	case entity.RegistrationPending:
		return &entity.RegistrationStatus{State: entity.RegistrationPending}, nil
	default:
		return nil, &entity.APIError{
			StatusCode: http.StatusOK,
			Body:       resp.Status,
			Err:        errUnknownRegistrationState,
		}
	}
}

// CompleteRegistration exchanges the approval pin for the device secret.
func (c *Client) CompleteRegistration(ctx context.Context, authyID uint64, pin, deviceName string) (_ *entity.CompletedRegistration, err error) {
	ctx, span := c.startSpan(ctx, "CompleteRegistration")
	defer func() { endSpan(span, err) }()

	form := c.baseQuery()
	form.Set("pin", pin)
	form.Set("device_app", deviceApp)
	form.Set("device_name", deviceName)
	form.Set("uuid", hash.NewMD5().String(pin))

	var resp completeRegistrationResponse
	if err := c.do(ctx, call{
		endpoint: "registration_complete",
		method:   http.MethodPost,
		path:     "/users/" + strconv.FormatUint(authyID, 10) + "/devices/registration/complete",
		form:     form,
	}, &resp); err != nil {
		return nil, err
	}

	if resp.Device == nil {
		return nil, entity.ErrDeviceNotInitialized
	}

	return &entity.CompletedRegistration{
		AuthyID: resp.AuthyID,
		Device:  entity.Device{ID: resp.Device.ID, SecretSeed: resp.Device.SecretSeed},
	}, nil
}
