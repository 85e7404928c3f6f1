package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/pudo/internal/client/cache"
	"github.com/dmitrijs2005/pudo/internal/client/client"
)

// SubmitIdentifier routes an email to password entry and a phone number to
// code entry, provided the account exists.
func (a *authService) SubmitIdentifier(ctx context.Context, input string) (Step, *FlowError) {
	const op = "submit identifier"

	epoch, ferr := a.begin(op, StateManualEntry)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	input = strings.TrimSpace(input)

	if ValidEmail(input) {
		ok, err := a.directory.IsRegistered(ctx, client.FieldEmail, input)
		if err != nil {
			return a.step(), a.logged(ctx, classify(op, err))
		}
		if !ok {
			return a.step(), newFlowError(KindNotRegistered, op, msgEmailNotFound, nil)
		}

		a.apply(ctx, epoch, StatePasswordEntry, func() {
			a.pending = pending{email: input}
		})
		return a.step(), nil
	}

	phone, ok := NormalizePhone(input)
	if !ok {
		return a.step(), newFlowError(KindInvalidInput, op, msgInvalidID, nil)
	}

	registered, err := a.directory.IsRegistered(ctx, client.FieldPhone, phone)
	if err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}
	if !registered {
		return a.step(), newFlowError(KindNotRegistered, op, msgPhoneNotFound, nil)
	}

	handle, err := a.backend.SendPhoneOtp(ctx, phone)
	if err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}

	a.apply(ctx, epoch, StatePhoneOtpEntry, func() {
		a.pending = pending{phone: phone, handle: handle, mode: phoneSignIn}
	})
	return a.withNotice("A verification code was sent to " + phone + "."), nil
}

// SubmitPassword signs in with the email chosen on the previous screen.
func (a *authService) SubmitPassword(ctx context.Context, password string) (Step, *FlowError) {
	const op = "submit password"

	epoch, ferr := a.begin(op, StatePasswordEntry)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	if password == "" {
		return a.step(), newFlowError(KindInvalidInput, op, msgPasswordRequired, nil)
	}
	email := a.snapshot().email

	sess, err := a.backend.Authenticate(ctx, email, password)
	if err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}
	if !a.current(epoch) {
		return a.step(), nil
	}

	if a.cache.ChangePassword(ctx).Pending() {
		a.reconcileReset(ctx, epoch, email, password)
	}

	a.offerBiometrics(ctx, epoch, email, password)

	if !sess.EmailVerified {
		a.apply(ctx, epoch, StatePasswordEntry, nil)
		return a.step(), newFlowError(KindCredentialRejected, op, msgEmailNotVerified, nil)
	}

	a.apply(ctx, epoch, StateAuthenticated, func() {
		a.session = sess
		a.pending = pending{}
	})
	return a.step(), nil
}

// reconcileReset consumes a pending password reset. The flag is cleared
// before the cached password is replaced with the one that just worked.
func (a *authService) reconcileReset(ctx context.Context, epoch uint64, email, password string) {
	a.apply(ctx, epoch, StateChangePasswordInterstitial, nil)

	a.cache.Put(ctx, cache.ChangePasswordFlag{ChangePassword: false})

	if cred := a.cache.Credential(ctx); cred != nil && strings.EqualFold(cred.User, email) {
		a.cache.Put(ctx, cache.CachedCredential{User: cred.User, Password: password})
	}
	a.flowLog().Info(ctx, "pending password reset reconciled")
}

// ForgotPassword sends a reset email and marks the cached password stale.
func (a *authService) ForgotPassword(ctx context.Context) (Step, *FlowError) {
	const op = "forgot password"

	epoch, ferr := a.begin(op, StatePasswordEntry)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	email := a.snapshot().email
	if err := a.backend.SendPasswordReset(ctx, email); err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}
	if !a.current(epoch) {
		return a.step(), nil
	}

	a.cache.Put(ctx, cache.ChangePasswordFlag{ChangePassword: true})
	return a.withNotice("A password reset email was sent to " + email + "."), nil
}

// logged writes ferr to the log at a level matching its kind.
func (a *authService) logged(ctx context.Context, ferr *FlowError) *FlowError {
	log := a.flowLog()
	if ferr.Kind == KindUnexpected {
		log.Error(ctx, "step failed", "op", ferr.Op, "error", ferr.Err)
	} else {
		log.Info(ctx, "step rejected", "op", ferr.Op, "kind", ferr.Kind, "error", ferr.Err)
	}
	return ferr
}

// SignInWithProvider completes a federated sign-in. There is no password to
// cache, so no biometric opt-in follows.
func (a *authService) SignInWithProvider(ctx context.Context, provider, idToken string) (Step, *FlowError) {
	const op = "provider sign in"

	epoch, ferr := a.begin(op, StateManualEntry)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return a.step(), newFlowError(KindInvalidInput, op, msgTokenRequired, nil)
	}

	sess, err := a.backend.SignInWithIDToken(ctx, provider, idToken)
	if errors.Is(err, client.ErrWrongSecret) {
		return a.step(), a.logged(ctx, newFlowError(KindCredentialRejected, op, msgTokenRejected, err))
	}
	if err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}

	if !a.apply(ctx, epoch, StateAuthenticated, func() {
		a.session = sess
		a.pending = pending{}
	}) {
		return a.step(), nil
	}
	a.flowLog().Info(ctx, "signed in with provider", "provider", provider)
	return a.step(), nil
}
