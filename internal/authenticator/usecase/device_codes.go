package usecase

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
)

type DeviceCodesOutput struct {
	Codes     []string
	ExpiresIn uint64
}

// DeviceCodes returns the three codes that currently sign device requests.
func (s *Usecase) DeviceCodes(ctx context.Context) (*DeviceCodesOutput, error) {
	ctx, span := s.startSpan(ctx, "DeviceCodes")
	defer span.End()

	_, device, err := s.requireAccount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to load device", err)
	}

	now := s.correctedNow()
	dc, err := s.deviceCodes(device, now)
	if err != nil {
		return nil, s.fail(ctx, "failed to compute device codes", err)
	}

	return &DeviceCodesOutput{
		Codes:     dc.Slice(),
		ExpiresIn: otp.ExpiresIn(now, entity.DeviceCodePeriod),
	}, nil
}
