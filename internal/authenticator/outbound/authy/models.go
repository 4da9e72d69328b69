package authy

import (
	"bytes"
	"encoding/json"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
)

// flexString decodes a JSON string or number into its text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())

	return nil
}

type errorResponse struct {
	ErrorCode flexString `json:"error_code"`
	Message   string     `json:"message"`
}

type userStatusResponse struct {
	Message      string `json:"message"`
	AuthyID      uint64 `json:"authy_id"`
	DevicesCount int    `json:"devices_count"`
	ForceOTT     bool   `json:"force_ott"`
	Success      bool   `json:"success"`
}

type startRegistrationResponse struct {
	RequestID   string     `json:"request_id"`
	Message     string     `json:"message"`
	ApprovalPIN flexString `json:"approval_pin"`
	Provider    string     `json:"provider"`
	Success     bool       `json:"success"`
}

type registrationStatusResponse struct {
	Status  string          `json:"status"`
	PIN     *string         `json:"pin"`
	Message json.RawMessage `json:"message"`
	Success bool            `json:"success"`
}

type completedDevice struct {
	ID         uint64 `json:"id"`
	SecretSeed string `json:"secret_seed"`
	Reinstall  bool   `json:"reinstall"`
}

type completeRegistrationResponse struct {
	AuthyID uint64           `json:"authy_id"`
	Device  *completedDevice `json:"device"`
}

type checkDeviceResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type authSyncResponse struct {
	MovingFactor flexString `json:"moving_factor"`
}

type authenticatorTokensResponse struct {
	AuthenticatorTokens []entity.AuthenticatorToken `json:"authenticator_tokens"`
	Message             string                      `json:"message"`
	Success             bool                        `json:"success"`
}

type deviceKeysResponse struct {
	Cellphone   string `json:"cellphone"`
	CountryCode uint8  `json:"country_code"`
	Success     bool   `json:"success"`
}
