package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
)

type TokenCodesInput struct {
	// Name narrows the result to fuzzy matches. Empty means every token.
	Name string `json:"name"`
}

type TokenCodesItem struct {
	Name   string
	Code   string
	Digits int
	// Error is set instead of Code when this token could not be computed.
	Error string
}

type TokenCodesOutput struct {
	Items     []TokenCodesItem
	ExpiresIn uint64
}

// TokenCodes computes a code for every token. A broken token does not stop
// the others.
func (s *Usecase) TokenCodes(ctx context.Context, in TokenCodesInput) (*TokenCodesOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenCodes")
	defer span.End()

	acc, _, err := s.requireAccount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to load device", err)
	}

	tokens, err := s.tokens(ctx, false)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		tokens = matchTokens(tokens, in.Name)
		if len(tokens) == 0 {
			return nil, s.fail(ctx, "no token matches "+in.Name, entity.ErrTokenNotFound)
		}
	}

	now := s.correctedNow()
	items := make([]TokenCodesItem, 0, len(tokens))
	for _, tok := range tokens {
		out, err := s.tokenCode(tok, acc.BackupPassword, now)
		if err != nil {
			slog.ErrorContext(ctx, "failed to compute token code", "service", tok.Name, "error", err)
			items = append(items, TokenCodesItem{Name: tok.Name, Digits: tok.CodeDigits(), Error: err.Error()})
			continue
		}

		items = append(items, TokenCodesItem{Name: out.Name, Code: out.Code, Digits: out.Digits})
	}

	return &TokenCodesOutput{
		Items:     items,
		ExpiresIn: otp.ExpiresIn(now, entity.TokenCodePeriod),
	}, nil
}
