package inbound

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
	"go.uber.org/atomic"
)

// registrationTask is the goroutine.Manager name of the background handshake.
const registrationTask = "registration"

// HTTPEndpoint exposes the authenticator over the JSON API.
type HTTPEndpoint struct {
	uc     uc
	bg     tasks
	appCtx context.Context

	lastRegistration atomic.Pointer[usecase.RegisterDeviceOutput]
}

// ListTokens returns the authenticator tokens. ?refresh=true bypasses the cache.
func (h *HTTPEndpoint) ListTokens(r *router.Request) (any, error) {
	refresh, err := r.GetQueryBool("refresh")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListTokens(r.Context(), usecase.ListTokensInput{Refresh: refresh})
	if err != nil {
		return nil, err
	}

	return ListTokensResponse(lo.Map(resp.Tokens, func(t usecase.TokenItem, _ int) TokenResponse {
		return TokenResponse{
			Name:         t.Name,
			OriginalName: t.OriginalName,
			AccountType:  t.AccountType,
			Digits:       t.Digits,
			UniqueID:     t.UniqueID,
		}
	})), nil
}

// TokenCode returns the current code of the token that best matches :name.
func (h *HTTPEndpoint) TokenCode(r *router.Request) (any, error) {
	resp, err := h.uc.TokenCode(r.Context(), usecase.TokenCodeInput{Name: r.GetParam("name")})
	if err != nil {
		return nil, err
	}

	return TokenCodeResponse{
		Name:      resp.Name,
		Code:      resp.Code,
		Digits:    resp.Digits,
		ExpiresIn: resp.ExpiresIn,
	}, nil
}

// TokenCodes returns a code for every token, or for the ?name= matches.
func (h *HTTPEndpoint) TokenCodes(r *router.Request) (any, error) {
	resp, err := h.uc.TokenCodes(r.Context(), usecase.TokenCodesInput{Name: r.GetQuery("name")})
	if err != nil {
		return nil, err
	}

	return TokenCodesResponse{
		Items: lo.Map(resp.Items, func(it usecase.TokenCodesItem, _ int) TokenCodesItemResponse {
			return TokenCodesItemResponse{
				Name:   it.Name,
				Code:   it.Code,
				Digits: it.Digits,
				Error:  it.Error,
			}
		}),
		ExpiresIn: resp.ExpiresIn,
	}, nil
}

func (h *HTTPEndpoint) SyncTime(r *router.Request) (any, error) {
	resp, err := h.uc.SyncTime(r.Context())
	if err != nil {
		return nil, err
	}

	return SyncTimeResponse{
		Direction:       string(resp.Direction),
		Offset:          resp.Offset,
		LastTimeChecked: resp.LastTimeChecked,
	}, nil
}

func (h *HTTPEndpoint) CheckDevice(r *router.Request) (any, error) {
	if err := h.uc.CheckCurrentDevice(r.Context()); err != nil {
		return nil, err
	}

	return CheckDeviceResponse{Valid: true}, nil
}

func (h *HTTPEndpoint) DeviceOwner(r *router.Request) (any, error) {
	resp, err := h.uc.CheckDeviceKeys(r.Context())
	if err != nil {
		return nil, err
	}

	return DeviceOwnerResponse{Cellphone: resp.Cellphone, CountryCode: resp.CountryCode}, nil
}

func (h *HTTPEndpoint) DeviceCodes(r *router.Request) (any, error) {
	resp, err := h.uc.DeviceCodes(r.Context())
	if err != nil {
		return nil, err
	}

	return DeviceCodesResponse{Codes: resp.Codes, ExpiresIn: resp.ExpiresIn}, nil
}

// StartRegistration validates the request and runs the handshake in the
// background. The approval can take minutes, so the caller polls
// RegistrationStatus.
func (h *HTTPEndpoint) StartRegistration(r *router.Request) (any, error) {
	var req StartRegistrationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in := usecase.RegisterDeviceInput{
		Phone:          req.Phone,
		DeviceName:     req.DeviceName,
		BackupPassword: req.BackupPassword,
	}
	if err := h.uc.PrepareRegistration(r.Context(), in); err != nil {
		return nil, err
	}

	h.lastRegistration.Store(nil)
	err := h.bg.Go(h.appCtx, registrationTask, func(ctx context.Context) error {
		out, err := h.uc.RegisterDevice(ctx, in)
		if err != nil {
			return err
		}
		h.lastRegistration.Store(out)

		return nil
	})
	switch {
	case errors.Is(err, goroutine.ErrAlreadyRunning):
		return nil, goerror.NewBusiness("A registration is already running", goerror.CodeConflict)
	case errors.Is(err, goroutine.ErrLimitReached), errors.Is(err, goroutine.ErrClosed):
		slog.WarnContext(r.Context(), "cannot schedule registration", "error", err)
		return nil, goerror.NewBusiness("Server is busy, try again later", goerror.CodeTooManyRequest)
	case err != nil:
		return nil, goerror.NewServer(err)
	}

	return StartRegistrationResponse{Task: registrationTask}, nil
}

// RegistrationStatus reports the last background registration.
func (h *HTTPEndpoint) RegistrationStatus(*router.Request) (any, error) {
	st, ok := h.bg.Status(registrationTask)
	if !ok {
		return nil, goerror.NewBusiness("No registration was started", goerror.CodeNotFound)
	}

	resp := RegistrationStatusResponse{Running: st.Running, StartedAt: st.StartedAt}
	if !st.Running {
		resp.FinishedAt = &st.FinishedAt
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
		if gerr, ok := goerror.As(st.Err); ok {
			resp.Error = gerr.Msg()
		}
	} else if out := h.lastRegistration.Load(); out != nil && !st.Running {
		resp.AuthyID = out.AuthyID
		resp.DeviceID = out.DeviceID
		resp.DeviceName = out.DeviceName
	}

	return resp, nil
}
