package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pudo/internal/client/biometric"
	"github.com/dmitrijs2005/pudo/internal/common"
)

// Start runs the entry decision of a cold start. It may be called again from
// manual entry to retry the biometric shortcut.
func (a *authService) Start(ctx context.Context) (Step, *FlowError) {
	const op = "start"

	epoch, ferr := a.begin(op, StateStart, StateManualEntry)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	a.newFlow()
	a.firstRunCleanup(ctx)

	next := EntryState(a.cache.FaceAuth(ctx), a.cache.ChangePassword(ctx))
	if !a.apply(ctx, epoch, next, nil) {
		return a.step(), nil
	}
	if next != StateBiometricPrompt {
		return a.step(), nil
	}
	return a.biometricSignIn(ctx, epoch)
}

// firstRunCleanup purges credentials that survived a reinstall. The secure
// store outlives the app-data directory that holds the marker.
func (a *authService) firstRunCleanup(ctx context.Context) {
	log := a.flowLog()

	seen, err := a.marker.Seen(ctx)
	if err != nil {
		log.Warn(ctx, "first-run marker unreadable, skipping cleanup", "error", err)
		return
	}
	if seen {
		return
	}

	log.Info(ctx, "first run detected")
	a.cache.Purge(ctx)

	if err := a.marker.Set(ctx); err != nil {
		log.Warn(ctx, "first-run marker not written", "error", err)
	}
}

func (a *authService) biometricSignIn(ctx context.Context, epoch uint64) (Step, *FlowError) {
	const op = "biometric sign-in"
	log := a.flowLog()

	if err := a.gate.Prompt(ctx, "Sign in to "+common.AppName); err != nil {
		a.apply(ctx, epoch, StateManualEntry, nil)
		if errors.Is(err, biometric.ErrUnavailable) {
			log.Info(ctx, "biometrics unavailable", "error", err)
			return a.step(), newFlowError(KindUnavailable, op, msgBiometricOff, err)
		}
		log.Info(ctx, "biometric prompt not passed", "error", err)
		return a.step(), nil
	}

	cred := a.cache.Credential(ctx)
	if cred == nil || !cred.Complete() {
		log.Warn(ctx, "biometric shortcut without a cached credential")
		a.apply(ctx, epoch, StateManualEntry, nil)
		return a.step(), nil
	}

	sess, err := a.backend.Authenticate(ctx, cred.User, cred.Password)
	if err != nil {
		ferr := classify(op, err)
		log.Warn(ctx, "cached credential rejected", "kind", ferr.Kind, "error", err)
		a.apply(ctx, epoch, StateManualEntry, nil)
		return a.step(), ferr
	}

	a.apply(ctx, epoch, StateAuthenticated, func() {
		a.session = sess
		a.pending = pending{}
	})
	return a.step(), nil
}
