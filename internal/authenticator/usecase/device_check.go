package usecase

import "context"

// CheckCurrentDevice asks the vendor whether the stored device is still valid.
func (s *Usecase) CheckCurrentDevice(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "CheckCurrentDevice")
	defer span.End()

	_, device, err := s.requireAccount(ctx)
	if err != nil {
		return s.fail(ctx, "failed to load device", err)
	}

	dc, err := s.deviceCodes(device, s.correctedNow())
	if err != nil {
		return s.fail(ctx, "failed to compute device codes", err)
	}

	if err := s.repoVendor.CheckCurrentDevice(ctx, device, dc); err != nil {
		return s.fail(ctx, "failed to check current device", err)
	}

	return nil
}
