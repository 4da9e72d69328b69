package inbound

import (
	"context"
	"sync"

	"github.com/shandysiswandi/authbite/internal/authenticator/usecase"
)

// fakeUC records calls and answers with canned values.
type fakeUC struct {
	mu    sync.Mutex
	calls []string

	registerIn  usecase.RegisterDeviceInput
	registerErr error
	prepareErr  error
	// registerGate blocks RegisterDevice until closed, when set.
	registerGate chan struct{}

	listIn    usecase.ListTokensInput
	codeIn    usecase.TokenCodeInput
	codesIn   usecase.TokenCodesInput
	err       error
	codes     *usecase.TokenCodesOutput
	checkErr  error
	syncOut   *usecase.SyncTimeOutput
	seedsOut  *usecase.DumpSeedsOutput
	tokensOut *usecase.ListTokensOutput
}

func (f *fakeUC) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeUC) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeUC) PrepareRegistration(_ context.Context, in usecase.RegisterDeviceInput) error {
	f.record("PrepareRegistration")
	f.mu.Lock()
	f.registerIn = in
	f.mu.Unlock()

	return f.prepareErr
}

func (f *fakeUC) RegisterDevice(ctx context.Context, in usecase.RegisterDeviceInput) (*usecase.RegisterDeviceOutput, error) {
	f.record("RegisterDevice")
	f.mu.Lock()
	f.registerIn = in
	gate := f.registerGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.registerErr != nil {
		return nil, f.registerErr
	}

	return &usecase.RegisterDeviceOutput{AuthyID: 12345, DeviceID: 321321, DeviceName: in.DeviceName}, nil
}

func (f *fakeUC) CheckCurrentDevice(context.Context) error {
	f.record("CheckCurrentDevice")
	return f.checkErr
}

func (f *fakeUC) CheckDeviceKeys(context.Context) (*usecase.CheckDeviceKeysOutput, error) {
	f.record("CheckDeviceKeys")
	if f.err != nil {
		return nil, f.err
	}

	return &usecase.CheckDeviceKeysOutput{Cellphone: "17172720", CountryCode: 49}, nil
}

func (f *fakeUC) DeviceCodes(context.Context) (*usecase.DeviceCodesOutput, error) {
	f.record("DeviceCodes")
	if f.err != nil {
		return nil, f.err
	}

	return &usecase.DeviceCodesOutput{Codes: []string{"1111111", "2222222", "3333333"}, ExpiresIn: 4}, nil
}

func (f *fakeUC) SyncTime(context.Context) (*usecase.SyncTimeOutput, error) {
	f.record("SyncTime")
	if f.err != nil {
		return nil, f.err
	}

	return f.syncOut, nil
}

func (f *fakeUC) ListTokens(_ context.Context, in usecase.ListTokensInput) (*usecase.ListTokensOutput, error) {
	f.record("ListTokens")
	f.listIn = in
	if f.err != nil {
		return nil, f.err
	}

	return f.tokensOut, nil
}

func (f *fakeUC) TokenCode(_ context.Context, in usecase.TokenCodeInput) (*usecase.TokenCodeOutput, error) {
	f.record("TokenCode")
	f.codeIn = in
	if f.err != nil {
		return nil, f.err
	}

	return &usecase.TokenCodeOutput{Name: "LastPass", Code: "123456", Digits: 6, ExpiresIn: 12}, nil
}

func (f *fakeUC) TokenCodes(_ context.Context, in usecase.TokenCodesInput) (*usecase.TokenCodesOutput, error) {
	f.record("TokenCodes")
	f.codesIn = in
	if f.err != nil {
		return nil, f.err
	}

	return f.codes, nil
}

func (f *fakeUC) DumpSeeds(context.Context) (*usecase.DumpSeedsOutput, error) {
	f.record("DumpSeeds")
	if f.err != nil {
		return nil, f.err
	}

	return f.seedsOut, nil
}
