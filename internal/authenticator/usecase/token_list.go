package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/keystore"
)

type ListTokensInput struct {
	Refresh bool
}

type TokenItem struct {
	Name         string
	OriginalName string
	AccountType  string
	Digits       int
	UniqueID     string
}

type ListTokensOutput struct {
	Tokens []TokenItem
}

// ListTokens returns the authenticator tokens, from the vault cache unless a
// refresh is asked for or the cache is unusable.
func (s *Usecase) ListTokens(ctx context.Context, in ListTokensInput) (*ListTokensOutput, error) {
	ctx, span := s.startSpan(ctx, "ListTokens")
	defer span.End()

	tokens, err := s.tokens(ctx, in.Refresh)
	if err != nil {
		return nil, err
	}

	return &ListTokensOutput{
		Tokens: lo.Map(tokens, func(t entity.AuthenticatorToken, _ int) TokenItem {
			return TokenItem{
				Name:         t.Name,
				OriginalName: lo.FromPtr(t.OriginalName),
				AccountType:  t.AccountType,
				Digits:       t.CodeDigits(),
				UniqueID:     t.UniqueID,
			}
		}),
	}, nil
}

// tokens returns the cached tokens or fetches them. Errors are already mapped.
func (s *Usecase) tokens(ctx context.Context, refresh bool) ([]entity.AuthenticatorToken, error) {
	if !refresh {
		tokens, err := s.repoVault.GetTokens(ctx)
		switch {
		case err == nil:
			return tokens, nil
		case errors.Is(err, keystore.ErrNotFound):
		case errors.Is(err, keystore.ErrDecode):
			slog.WarnContext(ctx, "cached tokens are unreadable, fetching again", "error", err)
		default:
			return nil, s.fail(ctx, "failed to read cached tokens", err)
		}
	}

	acc, device, err := s.requireAccount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to load device", err)
	}

	dc, err := s.deviceCodes(device, s.correctedNow())
	if err != nil {
		return nil, s.fail(ctx, "failed to compute device codes", err)
	}

	tokens, err := s.repoVendor.ListAuthenticatorTokens(ctx, acc.AuthyID, device.ID, dc, s.cfg.GetArray("vendor.apps"))
	if err != nil {
		return nil, s.fail(ctx, "failed to list authenticator tokens", err)
	}

	if err := s.repoVault.SaveTokens(ctx, tokens); err != nil {
		return nil, s.fail(ctx, "failed to cache tokens", err)
	}

	return tokens, nil
}
