package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/authbite/internal/pkg/keystore"
)

// Load restores the registered account and its time sync from the vault.
// A missing account is not an error: the client simply stays unregistered.
func (s *Usecase) Load(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Load")
	defer span.End()

	acc, err := s.repoVault.GetAccount(ctx)
	if errors.Is(err, keystore.ErrNotFound) {
		slog.InfoContext(ctx, "no registered device in vault")
		return nil
	}
	if err != nil {
		return s.fail(ctx, "failed to load account from vault", err)
	}

	s.setAccount(acc)

	return nil
}
