package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pudo/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	state() services.State
	Start(ctx context.Context) error
	SignIn(ctx context.Context) error
	SubmitPassword(ctx context.Context) error
	SignInWithGoogle(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	SignUp(ctx context.Context) error
	WaitForVerification(ctx context.Context) error
	SubmitCode(ctx context.Context) error
	ResendCode(ctx context.Context) error
	Back(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangeEmail(ctx context.Context) error
	DisableBiometrics(ctx context.Context) error
	EnrollPIN(ctx context.Context) error
}

// commandsFor lists the commands that make sense on a screen.
func commandsFor(s services.State) string {
	switch s {
	case services.StateManualEntry, services.StateStart:
		return "signin, google, signup, pin, device, exit"
	case services.StatePasswordEntry:
		return "password, forgot, back, exit"
	case services.StatePhoneOtpEntry:
		return "code, resend, back, exit"
	case services.StateAwaitingPhoneOrEmail:
		return "signup, back, exit"
	case services.StateEmailVerificationWait:
		return "wait, back, exit"
	case services.StateAuthenticated:
		return "logout, change-email, disable-device, pin, exit"
	}
	return "back, exit"
}

// runREPL starts a simple read–eval–print loop for the pudo CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF
// or when the user types "exit" or "quit".
//
// Commands:
//
//	signin           enter an email or phone number
//	google           sign in with a Google ID token
//	password         submit the password for the entered email
//	forgot           send a password reset email
//	signup           create an account (email, password, phone)
//	wait             wait for the sign-up email to be verified
//	code / resend    submit or resend the phone verification code
//	device           retry device PIN sign-in
//	pin              set the device PIN
//	logout, change-email, disable-device
//	back             leave the current screen
//	exit | quit      leave the program
//
// Errors returned by command handlers have already been shown to the user,
// so they are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pudo %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn("Available commands:", commandsFor(a.state()))

		case "signin":
			_ = a.SignIn(ctx)

		case "google":
			_ = a.SignInWithGoogle(ctx)

		case "password":
			_ = a.SubmitPassword(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "signup":
			_ = a.SignUp(ctx)

		case "wait":
			_ = a.WaitForVerification(ctx)

		case "code":
			_ = a.SubmitCode(ctx)

		case "resend":
			_ = a.ResendCode(ctx)

		case "device":
			_ = a.Start(ctx)

		case "pin":
			_ = a.EnrollPIN(ctx)

		case "back":
			_ = a.Back(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "change-email":
			_ = a.ChangeEmail(ctx)

		case "disable-device":
			_ = a.DisableBiometrics(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
