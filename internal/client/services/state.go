package services

import "github.com/dmitrijs2005/pudo/internal/client/cache"

// State is the screen the sign-in flow is currently on.
type State int

const (
	StateStart State = iota
	StateManualEntry
	// StateAwaitingPhoneOrEmail is the sign-up form collecting email,
	// password and phone.
	StateAwaitingPhoneOrEmail
	StateBiometricPrompt
	StatePasswordEntry
	StatePhoneOtpEntry
	// StateChangePasswordInterstitial is entered while a pending password
	// reset is reconciled after a successful sign-in.
	StateChangePasswordInterstitial
	StateEmailVerificationWait
	StateAuthenticated
	// StateFailed is entered when a sign-up flow aborts on an unexpected
	// error. Leave returns to manual entry.
	StateFailed
)

var stateNames = [...]string{
	StateStart:                      "Start",
	StateManualEntry:                "ManualEntry",
	StateAwaitingPhoneOrEmail:       "AwaitingPhoneOrEmail",
	StateBiometricPrompt:            "BiometricPrompt",
	StatePasswordEntry:              "PasswordEntry",
	StatePhoneOtpEntry:              "PhoneOtpEntry",
	StateChangePasswordInterstitial: "ChangePasswordInterstitial",
	StateEmailVerificationWait:      "EmailVerificationWait",
	StateAuthenticated:              "Authenticated",
	StateFailed:                     "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Step is what a screen needs to render after an orchestrator call.
type Step struct {
	State  State
	Email  string
	Phone  string
	Notice string
}

// EntryState picks the first screen of a cold start from the persisted
// preferences. A pending password reset suppresses the biometric shortcut
// because the cached password may be stale.
func EntryState(pref *cache.FaceAuthPreference, flag *cache.ChangePasswordFlag) State {
	switch {
	case pref == nil || pref.Answer != cache.AnswerYes:
		return StateManualEntry
	case flag.Pending():
		return StateManualEntry
	default:
		return StateBiometricPrompt
	}
}
