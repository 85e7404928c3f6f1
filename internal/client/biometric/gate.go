// Package biometric wraps the device's local user-presence check.
//
// Gate is the contract the orchestrator consumes. Attempt limiting is the
// gate's own business; callers make exactly one Prompt call per intent and
// never loop.
package biometric

import (
	"context"
	"errors"
)

var (
	// ErrFailed means the user did not pass the check.
	ErrFailed = errors.New("biometric check failed")
	// ErrCanceled means the user dismissed the prompt.
	ErrCanceled = errors.New("biometric prompt canceled")
	// ErrUnavailable means no sensor or no enrolled secret on this device.
	ErrUnavailable = errors.New("biometrics unavailable")
)

type Gate interface {
	// Prompt asks the user to confirm presence. A nil error is success.
	Prompt(ctx context.Context, reason string) error
}
