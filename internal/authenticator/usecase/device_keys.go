package usecase

import "context"

type CheckDeviceKeysOutput struct {
	Cellphone   string
	CountryCode uint8
}

// CheckDeviceKeys returns the phone number the vendor holds for the device.
func (s *Usecase) CheckDeviceKeys(ctx context.Context) (*CheckDeviceKeysOutput, error) {
	ctx, span := s.startSpan(ctx, "CheckDeviceKeys")
	defer span.End()

	acc, device, err := s.requireAccount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to load device", err)
	}

	dc, err := s.deviceCodes(device, s.correctedNow())
	if err != nil {
		return nil, s.fail(ctx, "failed to compute device codes", err)
	}

	owner, err := s.repoVendor.CheckDeviceKeys(ctx, acc.AuthyID, device.ID, dc)
	if err != nil {
		return nil, s.fail(ctx, "failed to check device keys", err)
	}

	return &CheckDeviceKeysOutput{
		Cellphone:   owner.Cellphone,
		CountryCode: owner.CountryCode,
	}, nil
}
