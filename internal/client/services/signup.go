package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/pudo/internal/client/client"
	"golang.org/x/sync/errgroup"
)

// SignUp creates an account once neither the email nor the phone is taken,
// and sends the verification email.
func (a *authService) SignUp(ctx context.Context, email, password, phone string) (Step, *FlowError) {
	const op = "sign up"

	epoch, ferr := a.begin(op, StateManualEntry, StateAwaitingPhoneOrEmail)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	a.newFlow()
	email = strings.TrimSpace(email)

	if !a.apply(ctx, epoch, StateAwaitingPhoneOrEmail, func() {
		a.pending = pending{email: email, phone: strings.TrimSpace(phone)}
	}) {
		return a.step(), nil
	}

	if !ValidEmail(email) {
		return a.step(), newFlowError(KindInvalidInput, op, msgInvalidEmail, nil)
	}
	if password == "" {
		return a.step(), newFlowError(KindInvalidInput, op, msgPasswordRequired, nil)
	}
	e164, ok := NormalizePhone(phone)
	if !ok {
		return a.step(), newFlowError(KindInvalidInput, op, msgInvalidPhone, nil)
	}

	var emailTaken, phoneTaken bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emailTaken, err = a.directory.IsRegistered(gctx, client.FieldEmail, email)
		return err
	})
	g.Go(func() error {
		var err error
		phoneTaken, err = a.directory.IsRegistered(gctx, client.FieldPhone, e164)
		return err
	})
	if err := g.Wait(); err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}
	if emailTaken {
		return a.step(), newFlowError(KindConflict, op, msgEmailTaken, client.ErrAlreadyInUse)
	}
	if phoneTaken {
		return a.step(), newFlowError(KindConflict, op, msgPhoneTaken, client.ErrAlreadyInUse)
	}

	sess, err := a.backend.CreateAccount(ctx, email, password)
	if err != nil {
		ferr := a.logged(ctx, classify(op, err))
		if ferr.Kind == KindConflict {
			a.apply(ctx, epoch, StateManualEntry, func() { a.pending = pending{} })
		}
		return a.step(), ferr
	}

	sendErr := a.backend.SendVerificationEmail(ctx, sess)

	if !a.apply(ctx, epoch, StateEmailVerificationWait, func() {
		a.pending = pending{email: email, password: password, phone: e164, mode: phoneLink, account: sess}
	}) {
		return a.step(), nil
	}
	if sendErr != nil {
		return a.step(), a.logged(ctx, classify(op, sendErr))
	}
	return a.withNotice("A verification email was sent to " + email + "."), nil
}

// AwaitEmailVerification polls the backend until the new account's email is
// verified, then sends the phone code. It returns early, without changing
// the screen, when ctx is canceled; Leave stops it too.
func (a *authService) AwaitEmailVerification(ctx context.Context) (Step, *FlowError) {
	const op = "await email verification"

	epoch, ferr := a.begin(op, StateEmailVerificationWait)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	a.pollCancel = cancel
	sess := a.pending.account
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.pollCancel = nil
		a.mu.Unlock()
	}()

	log := a.flowLog()
	err := a.poller.run(pctx, func(ctx context.Context) bool {
		fresh, err := a.backend.Reload(ctx, sess)
		if err != nil {
			log.Warn(ctx, "email verification check failed", "error", err)
			return false
		}
		sess = fresh
		return fresh.EmailVerified
	})
	if err != nil {
		if !a.current(epoch) {
			return a.step(), nil
		}
		return a.withNotice("Still waiting for email verification."), nil
	}
	log.Info(ctx, "email verified")

	phone := a.snapshot().phone
	handle, err := a.backend.SendPhoneOtp(ctx, phone)

	if !a.apply(ctx, epoch, StatePhoneOtpEntry, func() {
		a.pending.account = sess
		a.pending.handle = handle
	}) {
		return a.step(), nil
	}
	if err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}
	return a.withNotice("A verification code was sent to " + phone + "."), nil
}

// SubmitCode completes phone verification: linking the phone to a new
// account, or signing in with the phone.
func (a *authService) SubmitCode(ctx context.Context, code string) (Step, *FlowError) {
	const op = "submit code"

	epoch, ferr := a.begin(op, StatePhoneOtpEntry)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	code = strings.TrimSpace(code)
	if code == "" {
		return a.step(), newFlowError(KindInvalidInput, op, msgCodeRequired, nil)
	}

	p := a.snapshot()
	if p.handle == "" {
		return a.step(), newFlowError(KindCredentialRejected, op, msgNoCode, client.ErrInvalidHandle)
	}

	if p.mode == phoneSignIn {
		sess, err := a.backend.SignInWithPhone(ctx, p.handle, code)
		if err != nil {
			return a.step(), a.logged(ctx, classify(op, err))
		}
		a.apply(ctx, epoch, StateAuthenticated, func() {
			a.session = sess
			a.pending = pending{}
		})
		return a.step(), nil
	}

	sess, err := a.backend.LinkPhoneCredential(ctx, p.account, p.handle, code)
	if err != nil {
		ferr := a.logged(ctx, classify(op, err))
		switch ferr.Kind {
		case KindConflict:
			a.apply(ctx, epoch, StateManualEntry, func() { a.pending = pending{} })
		case KindUnexpected:
			a.apply(ctx, epoch, StateFailed, nil)
		}
		return a.step(), ferr
	}
	if !a.current(epoch) {
		return a.step(), nil
	}

	var notice string
	rec := client.DirectoryRecord{Email: p.email, Phone: p.phone}
	if err := a.directory.UpsertRecord(ctx, sess.UID, rec); err != nil {
		a.flowLog().Warn(ctx, "account directory not updated", "error", err)
		notice = "Your account is ready, but it may take a while before you can sign in with your phone."
	}

	a.offerBiometrics(ctx, epoch, p.email, p.password)

	a.apply(ctx, epoch, StateAuthenticated, func() {
		a.session = sess
		a.pending = pending{}
	})
	return a.withNotice(notice), nil
}

// ResendCode sends a fresh code to the pending phone number.
func (a *authService) ResendCode(ctx context.Context) (Step, *FlowError) {
	const op = "resend code"

	epoch, ferr := a.begin(op, StatePhoneOtpEntry)
	if ferr != nil {
		return a.step(), ferr
	}
	defer a.end()

	phone := a.snapshot().phone
	handle, err := a.backend.SendPhoneOtp(ctx, phone)
	if err != nil {
		return a.step(), a.logged(ctx, classify(op, err))
	}

	a.apply(ctx, epoch, StatePhoneOtpEntry, func() {
		a.pending.handle = handle
	})
	return a.withNotice("A new code was sent to " + phone + "."), nil
}
