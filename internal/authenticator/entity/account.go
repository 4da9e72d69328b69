package entity

// Account is the persisted client record of the registered device.
type Account struct {
	AuthyID        uint64    `json:"authy_id"`
	DeviceName     string    `json:"device_name"`
	Signature      string    `json:"signature"`
	Device         *Device   `json:"device"`
	TimeSync       *TimeSync `json:"time_sync"`
	BackupPassword string    `json:"backup_password"`
}

// RequireDevice returns the registered device or ErrDeviceNotInitialized.
func (a *Account) RequireDevice() (Device, error) {
	if a == nil || a.Device == nil {
		return Device{}, ErrDeviceNotInitialized
	}

	return *a.Device, nil
}
