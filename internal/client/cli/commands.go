package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/pudo/internal/client/client"
	"github.com/dmitrijs2005/pudo/internal/client/services"
	"github.com/dmitrijs2005/pudo/internal/common"
)

// report prints the outcome of an orchestrator step. A failed sign-up flow
// is left right away so the user lands back on manual entry.
func (a *App) report(ctx context.Context, step services.Step, ferr *services.FlowError) error {
	if step.Notice != "" {
		fmt.Fprintln(a.out, step.Notice)
	}
	if ferr != nil {
		fmt.Fprintln(a.out, ferr.Message)
		a.log.Debug(ctx, "step failed", "op", ferr.Op, "kind", ferr.Kind, "error", ferr.Err)
		if step.State == services.StateFailed {
			a.auth.Leave(ctx)
		}
		return ferr
	}
	if hint := screenHint(step); hint != "" {
		fmt.Fprintln(a.out, hint)
	}
	return nil
}

func screenHint(step services.Step) string {
	switch step.State {
	case services.StateManualEntry:
		return "Type 'signin' to sign in or 'signup' to create an account."
	case services.StatePasswordEntry:
		return fmt.Sprintf("Signing in as %s. Type 'password' to continue or 'forgot' to reset it.", step.Email)
	case services.StatePhoneOtpEntry:
		return fmt.Sprintf("Type 'code' to enter the code sent to %s, or 'resend'.", step.Phone)
	case services.StateEmailVerificationWait:
		return fmt.Sprintf("Open the link sent to %s, then type 'wait'.", step.Email)
	case services.StateAuthenticated:
		return fmt.Sprintf("Signed in as %s.", step.Email)
	}
	return ""
}

func (a *App) state() services.State {
	return a.auth.State()
}

// Start runs the entry decision: device sign-in when it is enabled,
// manual entry otherwise.
func (a *App) Start(ctx context.Context) error {
	step, ferr := a.auth.Start(ctx)
	return a.report(ctx, step, ferr)
}

func (a *App) SignIn(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Email or phone number", a.out)
	if err != nil {
		return err
	}
	step, ferr := a.auth.SubmitIdentifier(ctx, id)
	return a.report(ctx, step, ferr)
}

func (a *App) SubmitPassword(ctx context.Context) error {
	pw, err := getSecret(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	step, ferr := a.auth.SubmitPassword(ctx, string(pw))
	return a.report(ctx, step, ferr)
}

// SignInWithGoogle signs in with a Google ID token pasted by the user.
func (a *App) SignInWithGoogle(ctx context.Context) error {
	tok, err := getSecret(a.out, "Google ID token")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(tok)
	step, ferr := a.auth.SignInWithProvider(ctx, client.ProviderGoogle, string(tok))
	return a.report(ctx, step, ferr)
}

func (a *App) ForgotPassword(ctx context.Context) error {
	step, ferr := a.auth.ForgotPassword(ctx)
	return a.report(ctx, step, ferr)
}

func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := getSecret(a.out, "Choose a password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	phone, err := getSimpleText(a.reader, "Phone number", a.out)
	if err != nil {
		return err
	}
	step, ferr := a.auth.SignUp(ctx, email, string(pw), phone)
	return a.report(ctx, step, ferr)
}

// WaitForVerification polls until the email is verified. Ctrl-C stops
// waiting and keeps the current screen.
func (a *App) WaitForVerification(ctx context.Context) error {
	wctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(a.out, "Waiting for email verification (Ctrl-C to stop)...")
	step, ferr := a.auth.AwaitEmailVerification(wctx)
	return a.report(ctx, step, ferr)
}

func (a *App) SubmitCode(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Verification code", a.out)
	if err != nil {
		return err
	}
	step, ferr := a.auth.SubmitCode(ctx, code)
	return a.report(ctx, step, ferr)
}

func (a *App) ResendCode(ctx context.Context) error {
	step, ferr := a.auth.ResendCode(ctx)
	return a.report(ctx, step, ferr)
}

func (a *App) Back(ctx context.Context) error {
	step := a.auth.Leave(ctx)
	return a.report(ctx, step, nil)
}

func (a *App) Logout(ctx context.Context) error {
	step, ferr := a.auth.SignOut(ctx)
	if ferr == nil {
		fmt.Fprintln(a.out, "Signed out.")
	}
	return a.report(ctx, step, ferr)
}

func (a *App) ChangeEmail(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "New email", a.out)
	if err != nil {
		return err
	}
	step, ferr := a.auth.ChangeEmail(ctx, email)
	return a.report(ctx, step, ferr)
}

func (a *App) DisableBiometrics(ctx context.Context) error {
	step, ferr := a.auth.DisableBiometrics(ctx)
	return a.report(ctx, step, ferr)
}

// EnrollPIN sets the device PIN used for device sign-in.
func (a *App) EnrollPIN(ctx context.Context) error {
	pin, err := getSecret(a.out, "New device PIN (digits)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)
	again, err := getSecret(a.out, "Repeat PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)
	if string(pin) != string(again) {
		fmt.Fprintln(a.out, "PINs do not match.")
		return errPINMismatch
	}
	if err := a.pin.Enroll(ctx, pin); err != nil {
		fmt.Fprintln(a.out, "Could not set PIN:", err)
		return err
	}
	fmt.Fprintln(a.out, "Device PIN set.")
	return nil
}
