package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/pudo/internal/client/cache"
	"github.com/dmitrijs2005/pudo/internal/client/client"
)

// SignOut ends the session. A backend failure is logged; the local session
// is dropped regardless.
func (a *authService) SignOut(ctx context.Context) (Step, *FlowError) {
	const op = "sign out"

	epoch, ferr := a.begin(op, StateAuthenticated)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	a.signOut(ctx, epoch)
	return a.step(), nil
}

func (a *authService) signOut(ctx context.Context, epoch uint64) {
	a.mu.Lock()
	sess := a.session
	a.mu.Unlock()

	if err := a.backend.SignOut(ctx, sess); err != nil {
		a.flowLog().Warn(ctx, "backend sign-out failed", "error", err)
	}

	a.apply(ctx, epoch, StateManualEntry, func() {
		a.session = client.Session{}
		a.pending = pending{}
	})
}

// ChangeEmail moves the account to a new address, which the backend sends a
// verification email to, and signs out.
func (a *authService) ChangeEmail(ctx context.Context, newEmail string) (Step, *FlowError) {
	const op = "change email"

	epoch, ferr := a.begin(op, StateAuthenticated)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	newEmail = strings.TrimSpace(newEmail)
	if !ValidEmail(newEmail) {
		return a.step(), newFlowError(KindInvalidInput, op, msgInvalidEmail, nil)
	}

	a.mu.Lock()
	sess := a.session
	a.mu.Unlock()

	if err := a.backend.UpdateEmail(ctx, sess, newEmail); err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}
	if !a.current(epoch) {
		return a.step(), nil
	}
	log := a.flowLog()

	if cred := a.cache.Credential(ctx); cred != nil {
		a.cache.Put(ctx, cache.CachedCredential{User: newEmail, Password: cred.Password})
	}

	notice := "Email changed. Verify " + newEmail + " and sign in again."

	// An unreadable record is left alone: rewriting it from the session
	// alone would drop the phone index.
	rec, err := a.directory.Record(ctx, sess.UID)
	switch {
	case err != nil && !errors.Is(err, client.ErrNotFound):
		log.Warn(ctx, "account directory record unreadable, not updated", "error", err)
		notice += " Sign-in with your new email may take a while to become available."
	default:
		if rec.Phone == "" {
			rec.Phone = sess.Phone
		}
		rec.Email = newEmail
		if err := a.directory.UpsertRecord(ctx, sess.UID, rec); err != nil {
			log.Warn(ctx, "account directory not updated", "error", err)
		}
	}

	a.signOut(ctx, epoch)
	return a.withNotice(notice), nil
}

// DisableBiometrics records an explicit opt-out and forgets the cached
// credential.
func (a *authService) DisableBiometrics(ctx context.Context) (Step, *FlowError) {
	const op = "disable biometrics"

	_, ferr := a.begin(op, StateAuthenticated)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	a.cache.Put(ctx, cache.FaceAuthPreference{Answer: cache.AnswerNo})
	a.cache.Delete(ctx, cache.KeyCredential)
	a.flowLog().Info(ctx, "biometric sign-in disabled")

	return a.withNotice("Biometric sign-in disabled."), nil
}
