package authy

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
)

// CheckCurrentDevice verifies that the vendor still accepts the stored
// device secret.
func (c *Client) CheckCurrentDevice(ctx context.Context, device entity.Device, dc entity.DeviceCodes) (err error) {
	ctx, span := c.startSpan(ctx, "CheckCurrentDevice")
	defer func() { endSpan(span, err) }()

	id := strconv.FormatUint(device.ID, 10)
	q := c.authQuery(device.ID, dc)
	q.Set("locale", c.locale)
	q.Set("sha", device.HashSecret())

	var resp checkDeviceResponse
	return c.do(ctx, call{
		endpoint: "device_check",
		method:   http.MethodGet,
		path:     "/devices/" + id + "/soft_tokens/" + id + "/check",
		query:    q,
	}, &resp)
}

// AuthSync returns the server moving factor, already padded to a full unix
// timestamp.
func (c *Client) AuthSync(ctx context.Context, deviceID uint64, dc entity.DeviceCodes) (_ uint64, err error) {
	ctx, span := c.startSpan(ctx, "AuthSync")
	defer func() { endSpan(span, err) }()

	var resp authSyncResponse
	if err := c.do(ctx, call{
		endpoint: "auth_sync",
		method:   http.MethodGet,
		path:     "/devices/" + strconv.FormatUint(deviceID, 10) + "/auth_sync",
		query:    c.authQuery(deviceID, dc),
	}, &resp); err != nil {
		return 0, err
	}

	return entity.ParseMovingFactor(string(resp.MovingFactor))
}

// CheckDeviceKeys returns the phone number the vendor holds for the device.
func (c *Client) CheckDeviceKeys(ctx context.Context, authyID, deviceID uint64, dc entity.DeviceCodes) (_ *entity.DeviceOwner, err error) {
	ctx, span := c.startSpan(ctx, "CheckDeviceKeys")
	defer func() { endSpan(span, err) }()

	var resp deviceKeysResponse
	if err := c.do(ctx, call{
		endpoint: "device_keys",
		method:   http.MethodGet,
		path:     "/users/" + strconv.FormatUint(authyID, 10) + "/devices/" + strconv.FormatUint(deviceID, 10),
		query:    c.authQuery(deviceID, dc),
	}, &resp); err != nil {
		return nil, err
	}

	return &entity.DeviceOwner{Cellphone: resp.Cellphone, CountryCode: resp.CountryCode}, nil
}
