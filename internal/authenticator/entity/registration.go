package entity

// Vendor messages returned by the user status check.
const (
	UserMessageActive = "active"
	UserMessageNew    = "new"
)

// UserBranch is the registration path a phone number takes.
type UserBranch int

const (
	UserBranchUnknown UserBranch = iota
	// UserBranchRegisterDevice means the account exists; add this device.
	UserBranchRegisterDevice
	// UserBranchRegisterAccount means there is no account yet.
	UserBranchRegisterAccount
)

func (b UserBranch) String() string {
	switch b {
	case UserBranchRegisterDevice:
		return "RegisterDevice"
	case UserBranchRegisterAccount:
		return "RegisterAccount"
	default:
		return "Unknown"
	}
}

// UserBranchFromMessage maps the vendor status message to a branch.
func UserBranchFromMessage(msg string) UserBranch {
	switch msg {
	case UserMessageActive:
		return UserBranchRegisterDevice
	case UserMessageNew:
		return UserBranchRegisterAccount
	default:
		return UserBranchUnknown
	}
}

// UserStatus is the vendor answer for a phone number.
type UserStatus struct {
	AuthyID      uint64
	DevicesCount int
	ForceOTT     bool
	Branch       UserBranch
}

// RegistrationState is the approval state of a pending registration.
type RegistrationState string

const (
	RegistrationPending  RegistrationState = "pending"
	RegistrationAccepted RegistrationState = "accepted"
)

// RegistrationStatus is Pending, or Accepted with the approval pin.
type RegistrationStatus struct {
	State RegistrationState
	PIN   string
}

func (s RegistrationStatus) Accepted() bool {
	return s.State == RegistrationAccepted
}

// RegistrationSession lives from the start of a registration until the
// device exists. It is never persisted.
type RegistrationSession struct {
	AuthyID    uint64
	Signature  string
	DeviceName string
	RequestID  string
}

// CompletedRegistration is the vendor response to a completed registration.
type CompletedRegistration struct {
	AuthyID uint64
	Device  Device
}
