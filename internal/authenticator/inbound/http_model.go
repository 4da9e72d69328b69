package inbound

import (
	"net/http"
	"time"
)

type TokenResponse struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name,omitempty"`
	AccountType  string `json:"account_type"`
	Digits       int    `json:"digits"`
	UniqueID     string `json:"unique_id"`
}

type ListTokensResponse []TokenResponse

func (r ListTokensResponse) Meta() map[string]any {
	return map[string]any{"total": len(r)}
}

type TokenCodeResponse struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Digits    int    `json:"digits"`
	ExpiresIn uint64 `json:"expires_in"`
}

type TokenCodesItemResponse struct {
	Name   string `json:"name"`
	Code   string `json:"code,omitempty"`
	Digits int    `json:"digits"`
	Error  string `json:"error,omitempty"`
}

type TokenCodesResponse struct {
	Items     []TokenCodesItemResponse `json:"items"`
	ExpiresIn uint64                   `json:"expires_in"`
}

type SyncTimeResponse struct {
	Direction       string `json:"direction"`
	Offset          uint64 `json:"offset"`
	LastTimeChecked uint64 `json:"last_time_checked"`
}

func (SyncTimeResponse) Message() string {
	return "Time synchronized with the vendor"
}

type CheckDeviceResponse struct {
	Valid bool `json:"valid"`
}

type DeviceOwnerResponse struct {
	Cellphone   string `json:"cellphone"`
	CountryCode uint8  `json:"country_code"`
}

type DeviceCodesResponse struct {
	Codes     []string `json:"codes"`
	ExpiresIn uint64   `json:"expires_in"`
}

type StartRegistrationRequest struct {
	Phone          string `json:"phone"`
	DeviceName     string `json:"device_name"`
	BackupPassword string `json:"backup_password"`
}

type StartRegistrationResponse struct {
	Task string `json:"task"`
}

func (StartRegistrationResponse) StatusCode() int {
	return http.StatusAccepted
}

func (StartRegistrationResponse) Message() string {
	return "Registration started. Approve it on one of your devices."
}

type RegistrationStatusResponse struct {
	Running    bool       `json:"running"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	AuthyID    uint64     `json:"authy_id,omitempty"`
	DeviceID   uint64     `json:"device_id,omitempty"`
	DeviceName string     `json:"device_name,omitempty"`
}
