package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/goerror"
	"github.com/shandysiswandi/authbite/internal/pkg/idempotency"
)

var errRegistrationPending = errors.New("registration is pending")

type RegisterDeviceInput struct {
	Phone          string `json:"phone" validate:"required,phone"`
	DeviceName     string `json:"device_name" validate:"required,max=64"`
	BackupPassword string `json:"backup_password" validate:"required"`
}

type RegisterDeviceOutput struct {
	AuthyID    uint64
	DeviceID   uint64
	DeviceName string
}

// RegisterDevice runs the push registration handshake and persists the new
// account once the vendor hands out the device secret.
func (s *Usecase) RegisterDevice(ctx context.Context, in RegisterDeviceInput) (*RegisterDeviceOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterDevice")
	defer span.End()

	if err := s.PrepareRegistration(ctx, in); err != nil {
		return nil, err
	}

	status, err := s.repoVendor.CheckUserStatus(ctx, in.Phone, s.uuid.Generate())
	if err != nil {
		return nil, s.fail(ctx, "failed to check user status", err)
	}
	if status.Branch == entity.UserBranchRegisterAccount {
		return nil, s.fail(ctx, "phone has no vendor account", entity.ErrAccountRegistrationUnsupported)
	}

	signature := s.signature.Generate()
	requestID, err := s.repoVendor.StartRegistration(ctx, status.AuthyID, signature, in.DeviceName)
	if err != nil {
		return nil, s.fail(ctx, "failed to start registration", err)
	}

	slog.InfoContext(ctx, "registration started, approve it on another device",
		"authy_id", status.AuthyID, "request_id", requestID)

	pin, err := s.awaitApproval(ctx, status.AuthyID, requestID, signature)
	if err != nil {
		return nil, s.fail(ctx, "registration was not approved", err)
	}

	var acc entity.Account
	err = s.idemp.Exec(ctx, "registration:complete:"+requestID, func(ctx context.Context) error {
		done, err := s.repoVendor.CompleteRegistration(ctx, status.AuthyID, pin, in.DeviceName)
		if err != nil {
			return err
		}

		acc = entity.Account{
			AuthyID:        done.AuthyID,
			DeviceName:     in.DeviceName,
			Signature:      signature,
			Device:         &done.Device,
			BackupPassword: in.BackupPassword,
		}

		return s.repoVault.SaveAccount(ctx, acc)
	}, idempotency.WithLockDuration(s.pollTimeout()))
	if err != nil {
		return nil, s.fail(ctx, "failed to complete registration", err)
	}

	s.setAccount(&acc)
	s.resetReady()

	slog.InfoContext(ctx, "device registered", "authy_id", acc.AuthyID, "device_id", acc.Device.ID)

	return &RegisterDeviceOutput{
		AuthyID:    acc.AuthyID,
		DeviceID:   acc.Device.ID,
		DeviceName: acc.DeviceName,
	}, nil
}

// PrepareRegistration checks that a registration with in may start: the
// input is valid and no device is registered yet.
func (s *Usecase) PrepareRegistration(ctx context.Context, in RegisterDeviceInput) error {
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	_, _, err := s.requireAccount(ctx)
	if err == nil {
		return s.fail(ctx, "refusing to register over an existing device", entity.ErrDeviceAlreadyRegistered)
	}
	if !errors.Is(err, entity.ErrDeviceNotInitialized) {
		return s.fail(ctx, "failed to read account from vault", err)
	}

	return nil
}

// awaitApproval polls the registration status until it is accepted, the
// attempts run out or ctx is done.
func (s *Usecase) awaitApproval(ctx context.Context, authyID uint64, requestID, signature string) (string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, s.pollTimeout())
	defer cancel()

	b := retry.NewConstant(s.pollInterval())
	b = retry.WithMaxRetries(s.pollMaxAttempts()-1, b)

	var pin string
	err := retry.Do(pollCtx, b, func(ctx context.Context) error {
		status, err := s.repoVendor.CheckRegistration(ctx, authyID, requestID, signature)
		if err != nil {
			return err
		}
		if !status.Accepted() {
			slog.DebugContext(ctx, "registration still pending", "request_id", requestID)
			return retry.RetryableError(errRegistrationPending)
		}

		pin = status.PIN

		return nil
	})

	switch {
	case err == nil:
		return pin, nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, errRegistrationPending), errors.Is(err, context.DeadlineExceeded):
		return "", entity.ErrRegistrationTimeout
	default:
		return "", err
	}
}

func (s *Usecase) pollInterval() time.Duration {
	sec := s.cfg.GetFloat64("registration.poll_interval_seconds")
	if sec <= 0 {
		return defaultPollInterval
	}

	return time.Duration(sec * float64(time.Second))
}

func (s *Usecase) pollMaxAttempts() uint64 {
	if n := s.cfg.GetUint64("registration.max_attempts"); n > 0 {
		return n
	}

	return defaultPollMaxAttempts
}

func (s *Usecase) pollTimeout() time.Duration {
	if d := s.cfg.GetSecond("registration.timeout_seconds"); d > 0 {
		return d
	}

	return defaultPollTimeout
}
