package inbound

import (
	"context"

	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
	"github.com/shandysiswandi/authbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/authbite/internal/pkg/router"
)

type uc interface {
	PrepareRegistration(ctx context.Context, in usecase.RegisterDeviceInput) error
	RegisterDevice(ctx context.Context, in usecase.RegisterDeviceInput) (*usecase.RegisterDeviceOutput, error)

	CheckCurrentDevice(ctx context.Context) error
	CheckDeviceKeys(ctx context.Context) (*usecase.CheckDeviceKeysOutput, error)
	DeviceCodes(ctx context.Context) (*usecase.DeviceCodesOutput, error)
	SyncTime(ctx context.Context) (*usecase.SyncTimeOutput, error)

	ListTokens(ctx context.Context, in usecase.ListTokensInput) (*usecase.ListTokensOutput, error)
	TokenCode(ctx context.Context, in usecase.TokenCodeInput) (*usecase.TokenCodeOutput, error)
	TokenCodes(ctx context.Context, in usecase.TokenCodesInput) (*usecase.TokenCodesOutput, error)
	DumpSeeds(ctx context.Context) (*usecase.DumpSeedsOutput, error)
}

// tasks runs work that outlives a request.
type tasks interface {
	Go(pCtx context.Context, name string, f func(ctx context.Context) error) error
	Status(name string) (goroutine.Status, bool)
}

// RegisterHTTPEndpoint mounts the API. Background registrations run under
// appCtx so shutting the app down cancels them.
func RegisterHTTPEndpoint(appCtx context.Context, r *router.Router, uc uc, bg tasks) {
	end := &HTTPEndpoint{uc: uc, bg: bg, appCtx: appCtx}

	r.GET("/api/v1/tokens", end.ListTokens)
	r.GET("/api/v1/tokens/:name/code", end.TokenCode)
	r.GET("/api/v1/codes", end.TokenCodes)

	r.POST("/api/v1/time-sync", end.SyncTime)
	r.GET("/api/v1/device/check", end.CheckDevice)
	r.GET("/api/v1/device/owner", end.DeviceOwner)
	r.GET("/api/v1/device/codes", end.DeviceCodes)

	r.POST("/api/v1/registrations", end.StartRegistration)
	r.GET("/api/v1/registrations/status", end.RegistrationStatus)
}
