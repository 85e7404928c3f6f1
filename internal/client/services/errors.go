package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pudo/internal/client/biometric"
	"github.com/dmitrijs2005/pudo/internal/client/client"
)

// Kind classifies a flow failure by how the screen should react to it.
type Kind int

const (
	// KindUnexpected is logged and reported generically.
	KindUnexpected Kind = iota
	// KindInvalidInput is a re-prompt; no backend call was made.
	KindInvalidInput
	// KindNotRegistered keeps the user on the current screen.
	KindNotRegistered
	// KindCredentialRejected covers wrong passwords and codes.
	KindCredentialRejected
	// KindConflict covers already-linked and already-in-use credentials.
	KindConflict
	// KindUnavailable covers network, platform and sensor outages.
	KindUnavailable
)

var kindNames = [...]string{
	KindUnexpected:         "Unexpected",
	KindInvalidInput:       "InvalidInput",
	KindNotRegistered:      "NotRegistered",
	KindCredentialRejected: "CredentialRejected",
	KindConflict:           "Conflict",
	KindUnavailable:        "Unavailable",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

var (
	// ErrBusy is returned when a step is requested while another is running.
	ErrBusy = errors.New("another step is in progress")
	// ErrWrongState is returned when a step does not apply to the current screen.
	ErrWrongState = errors.New("step not allowed in current state")
)

const (
	msgGeneric          = "Something went wrong. Please try again."
	msgUnavailable      = "Service unavailable. Please try again later."
	msgInvalidID        = "Please enter a valid email or 10-digit phone number."
	msgInvalidEmail     = "Please enter a valid email address."
	msgInvalidPhone     = "Please enter a valid 10-digit phone number."
	msgPasswordRequired = "Password is required."
	msgCodeRequired     = "Verification code is required."
	msgTokenRequired    = "A sign-in token is required."
	msgTokenRejected    = "The provider sign-in was rejected. Please try again."
	msgEmailNotFound    = "This email is not registered."
	msgPhoneNotFound    = "This phone number is not registered. Please sign up first."
	msgEmailNotVerified = "Email not verified. Please verify your email before proceeding."
	msgEmailTaken       = "An account with this email already exists."
	msgPhoneTaken       = "This phone number is already registered."
	msgNoCode           = "No verification code is pending. Please request a new code."
	msgBiometricOff     = "Biometric sign-in is unavailable. Please sign in manually."
)

// FlowError is the only error type orchestrator steps return.
type FlowError struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return e.Op + ": " + e.Message
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Is matches another *FlowError of the same kind.
func (e *FlowError) Is(target error) bool {
	t, ok := target.(*FlowError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a FlowError in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpected
}

func newFlowError(kind Kind, op, msg string, err error) *FlowError {
	return &FlowError{Kind: kind, Op: op, Message: msg, Err: err}
}

// classify maps a collaborator error onto the flow taxonomy.
func classify(op string, err error) *FlowError {
	switch {
	case errors.Is(err, client.ErrWrongSecret):
		return newFlowError(KindCredentialRejected, op, "Wrong password.", err)
	case errors.Is(err, client.ErrDisabled):
		return newFlowError(KindCredentialRejected, op, "This account has been disabled.", err)
	case errors.Is(err, client.ErrInvalidCode):
		return newFlowError(KindCredentialRejected, op, "Invalid verification code.", err)
	case errors.Is(err, client.ErrInvalidHandle):
		return newFlowError(KindCredentialRejected, op, "Verification expired. Please request a new code.", err)
	case errors.Is(err, client.ErrNotFound):
		return newFlowError(KindNotRegistered, op, "No account found.", err)
	case errors.Is(err, client.ErrInvalidIdentifier):
		return newFlowError(KindInvalidInput, op, msgInvalidID, err)
	case errors.Is(err, client.ErrWeakSecret):
		return newFlowError(KindInvalidInput, op, "Password is too weak.", err)
	case errors.Is(err, client.ErrAlreadyLinked):
		return newFlowError(KindConflict, op, "This phone number is already linked to an account.", err)
	case errors.Is(err, client.ErrAlreadyInUse):
		return newFlowError(KindConflict, op, "This email or phone number is already in use.", err)
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, biometric.ErrUnavailable):
		return newFlowError(KindUnavailable, op, msgUnavailable, err)
	default:
		return newFlowError(KindUnexpected, op, msgGeneric, err)
	}
}
