package vault

import (
	"context"
	"errors"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/keystore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyAccount = "devices"
	keyTokens  = "tokens"
)

// Vault stores the account and token records in a keystore.
type Vault struct {
	store keystore.Store
	ins   instrument.Instrumentation
}

func New(store keystore.Store, ins instrument.Instrumentation) *Vault {
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Vault{store: store, ins: ins}
}

func (v *Vault) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return v.ins.Tracer("authenticator.outbound.vault").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, keystore.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetAccount returns keystore.ErrNotFound when no device is registered.
func (v *Vault) GetAccount(ctx context.Context) (_ *entity.Account, err error) {
	ctx, span := v.startSpan(ctx, "GetAccount")
	defer func() { endSpan(span, err) }()

	var acc entity.Account
	if err := v.store.Get(ctx, keyAccount, &acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

func (v *Vault) SaveAccount(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := v.startSpan(ctx, "SaveAccount")
	defer func() { endSpan(span, err) }()

	return v.store.Set(ctx, keyAccount, acc)
}

// GetTokens returns keystore.ErrNotFound when the tokens were never cached.
func (v *Vault) GetTokens(ctx context.Context) (_ []entity.AuthenticatorToken, err error) {
	ctx, span := v.startSpan(ctx, "GetTokens")
	defer func() { endSpan(span, err) }()

	var tokens []entity.AuthenticatorToken
	if err := v.store.Get(ctx, keyTokens, &tokens); err != nil {
		return nil, err
	}

	return tokens, nil
}

func (v *Vault) SaveTokens(ctx context.Context, tokens []entity.AuthenticatorToken) (err error) {
	ctx, span := v.startSpan(ctx, "SaveTokens")
	defer func() { endSpan(span, err) }()

	if tokens == nil {
		tokens = []entity.AuthenticatorToken{}
	}

	return v.store.Set(ctx, keyTokens, tokens)
}
