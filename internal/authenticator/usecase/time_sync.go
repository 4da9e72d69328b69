package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
)

type SyncTimeOutput struct {
	Direction       entity.Direction
	Offset          uint64
	LastTimeChecked uint64
}

// SyncTime measures the offset between local and vendor time. The request is
// signed with codes for the uncorrected local time.
func (s *Usecase) SyncTime(ctx context.Context) (*SyncTimeOutput, error) {
	ctx, span := s.startSpan(ctx, "SyncTime")
	defer span.End()

	acc, device, err := s.requireAccount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to load device", err)
	}

	local := s.now()
	dc, err := s.deviceCodes(device, local)
	if err != nil {
		return nil, s.fail(ctx, "failed to compute device codes", err)
	}

	server, err := s.repoVendor.AuthSync(ctx, device.ID, dc)
	if err != nil {
		return nil, s.fail(ctx, "failed to sync time", err)
	}

	ts := entity.NewTimeSync(local, server)
	acc.TimeSync = &ts
	if err := s.repoVault.SaveAccount(ctx, acc); err != nil {
		return nil, s.fail(ctx, "failed to persist time sync", err)
	}
	s.setAccount(&acc)

	slog.InfoContext(ctx, "time synced", "direction", ts.Direction, "offset", ts.Offset)

	return &SyncTimeOutput{
		Direction:       ts.Direction,
		Offset:          ts.Offset,
		LastTimeChecked: ts.LastTimeChecked,
	}, nil
}
