package usecase

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/pkg/otp"
)

type SeedItem struct {
	Name   string
	Secret string
}

type DumpSeedsOutput struct {
	Seeds []SeedItem
}

// DumpSeeds returns the Base32 secret of every token so it can be imported
// into another authenticator.
func (s *Usecase) DumpSeeds(ctx context.Context) (*DumpSeedsOutput, error) {
	ctx, span := s.startSpan(ctx, "DumpSeeds")
	defer span.End()

	acc, _, err := s.requireAccount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to load device", err)
	}

	tokens, err := s.tokens(ctx, false)
	if err != nil {
		return nil, err
	}

	seeds := make([]SeedItem, 0, len(tokens))
	for _, tok := range tokens {
		rt, err := s.readyToken(tok, acc.BackupPassword)
		if err != nil {
			return nil, s.fail(ctx, "failed to initialize token", err)
		}

		secret, err := rt.Secret(s.cipher)
		if err != nil {
			return nil, s.fail(ctx, "failed to decrypt token seed", err)
		}

		seeds = append(seeds, SeedItem{Name: tok.Name, Secret: otp.EncodeBase32(secret)})
	}

	return &DumpSeedsOutput{Seeds: seeds}, nil
}
