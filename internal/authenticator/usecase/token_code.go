package usecase

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/otp"
)

type TokenCodeInput struct {
	Name string `json:"name" validate:"required"`
}

type TokenCodeOutput struct {
	Name      string
	Code      string
	Digits    int
	ExpiresIn uint64
}

// TokenCode returns the current code of the token that best matches the name.
func (s *Usecase) TokenCode(ctx context.Context, in TokenCodeInput) (*TokenCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, _, err := s.requireAccount(ctx)
	if err != nil {
		return nil, s.fail(ctx, "failed to load device", err)
	}

	tokens, err := s.tokens(ctx, false)
	if err != nil {
		return nil, err
	}

	found := matchTokens(tokens, in.Name)
	if len(found) == 0 {
		return nil, s.fail(ctx, "no token matches "+in.Name, entity.ErrTokenNotFound)
	}

	out, err := s.tokenCode(found[0], acc.BackupPassword, s.correctedNow())
	if err != nil {
		return nil, s.fail(ctx, "failed to compute token code", err)
	}

	return out, nil
}

func (s *Usecase) tokenCode(tok entity.AuthenticatorToken, backupPassword string, now uint64) (*TokenCodeOutput, error) {
	rt, err := s.readyToken(tok, backupPassword)
	if err != nil {
		return nil, err
	}

	code, err := rt.Code(s.cipher, s.otp, now)
	if err != nil {
		return nil, err
	}

	return &TokenCodeOutput{
		Name:      tok.Name,
		Code:      code,
		Digits:    tok.CodeDigits(),
		ExpiresIn: otp.ExpiresIn(now, entity.TokenCodePeriod),
	}, nil
}
