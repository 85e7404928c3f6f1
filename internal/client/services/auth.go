// Package services contains the sign-in flow of the pudo client.
//
// AuthService decides which screen comes next by combining the locally
// cached credential and preferences with answers from the identity backend
// and the account directory. Every exported step runs to completion before
// the next one is accepted; Leave may be called at any time and makes the
// result of an in-flight step a no-op.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/pudo/internal/client/biometric"
	"github.com/dmitrijs2005/pudo/internal/client/cache"
	"github.com/dmitrijs2005/pudo/internal/client/client"
	"github.com/dmitrijs2005/pudo/internal/client/firstrun"
	"github.com/dmitrijs2005/pudo/internal/logging"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// AuthService is the sign-in state machine consumed by the CLI.
//
// Every step returns the screen to show next. A non-nil *FlowError carries
// the message for the user; the returned Step is valid either way.
type AuthService interface {
	Start(ctx context.Context) (Step, *FlowError)
	SubmitIdentifier(ctx context.Context, input string) (Step, *FlowError)
	SubmitPassword(ctx context.Context, password string) (Step, *FlowError)
	// SignInWithProvider signs in from manual entry with an identity token
	// obtained from a federated provider.
	SignInWithProvider(ctx context.Context, provider, idToken string) (Step, *FlowError)
	ForgotPassword(ctx context.Context) (Step, *FlowError)
	SignUp(ctx context.Context, email, password, phone string) (Step, *FlowError)
	AwaitEmailVerification(ctx context.Context) (Step, *FlowError)
	SubmitCode(ctx context.Context, code string) (Step, *FlowError)
	ResendCode(ctx context.Context) (Step, *FlowError)
	SignOut(ctx context.Context) (Step, *FlowError)
	ChangeEmail(ctx context.Context, newEmail string) (Step, *FlowError)
	DisableBiometrics(ctx context.Context) (Step, *FlowError)
	// Leave abandons the current screen. It never blocks on a running step.
	Leave(ctx context.Context) Step
	State() State
	Session() (client.Session, bool)
}

// OptInPrompter asks whether biometric sign-in should be enabled.
type OptInPrompter interface {
	ConfirmBiometricOptIn(ctx context.Context) (bool, error)
}

// Deps are the collaborators of the sign-in flow.
type Deps struct {
	Backend      client.IdentityBackend
	Directory    client.AccountDirectory
	Cache        *cache.CredentialCache
	Gate         biometric.Gate
	Marker       firstrun.Marker
	Prompter     OptInPrompter
	Log          logging.Logger
	Clock        clockwork.Clock
	PollInterval time.Duration
}

type phoneMode int

const (
	phoneSignIn phoneMode = iota
	phoneLink
)

// pending is the data carried between screens of one flow.
type pending struct {
	email    string
	password string
	phone    string
	handle   string
	mode     phoneMode
	account  client.Session
}

type authService struct {
	backend   client.IdentityBackend
	directory client.AccountDirectory
	cache     *cache.CredentialCache
	gate      biometric.Gate
	marker    firstrun.Marker
	prompter  OptInPrompter
	log       logging.Logger
	poller    poller

	mu         sync.Mutex
	state      State
	busy       bool
	epoch      uint64
	flowID     string
	pending    pending
	session    client.Session
	pollCancel context.CancelFunc
}

// NewAuthService constructs an AuthService in StateStart.
func NewAuthService(d Deps) AuthService {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log := d.Log
	if log == nil {
		log = logging.Discard()
	}

	return &authService{
		backend:   d.Backend,
		directory: d.Directory,
		cache:     d.Cache,
		gate:      d.Gate,
		marker:    d.Marker,
		prompter:  d.Prompter,
		log:       log,
		poller:    poller{clock: clock, interval: interval},
		state:     StateStart,
		flowID:    uuid.NewString(),
	}
}

// begin claims the single step slot and checks the current screen.
func (a *authService) begin(op string, allowed ...State) (uint64, *FlowError) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.busy {
		return 0, newFlowError(KindUnexpected, op, "Please wait for the current action to finish.", ErrBusy)
	}

	ok := len(allowed) == 0
	for _, s := range allowed {
		if a.state == s {
			ok = true
			break
		}
	}
	if !ok {
		return 0, newFlowError(KindUnexpected, op, msgGeneric, ErrWrongState)
	}

	a.busy = true
	return a.epoch, nil
}

func (a *authService) end() {
	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
}

// current reports whether no Leave happened since epoch was taken.
func (a *authService) current(epoch uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.epoch == epoch
}

// apply moves to state to and runs fn under the lock, unless the screen was
// left since epoch was taken. It reports whether the result was applied.
func (a *authService) apply(ctx context.Context, epoch uint64, to State, fn func()) bool {
	a.mu.Lock()
	if a.epoch != epoch {
		a.mu.Unlock()
		a.flowLog().Debug(ctx, "discarding result of abandoned step", "to", to)
		return false
	}
	from := a.state
	if fn != nil {
		fn()
	}
	a.state = to
	flowID := a.flowID
	a.mu.Unlock()

	if from != to {
		a.log.Info(ctx, "state transition", "flow_id", flowID, "from", from, "to", to)
	}
	return true
}

// newFlow starts a new correlation id for log lines.
func (a *authService) newFlow() {
	a.mu.Lock()
	a.flowID = uuid.NewString()
	a.mu.Unlock()
}

func (a *authService) flowLog() logging.Logger {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.log.With("flow_id", a.flowID)
}

func (a *authService) snapshot() pending {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// step returns the current screen.
func (a *authService) step() Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stepLocked()
}

func (a *authService) stepLocked() Step {
	s := Step{State: a.state, Email: a.pending.email, Phone: a.pending.phone}
	if a.state == StateAuthenticated {
		s.Email = a.session.Email
		s.Phone = a.session.Phone
	}
	return s
}

func (a *authService) withNotice(notice string) Step {
	s := a.step()
	s.Notice = notice
	return s
}

func (a *authService) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *authService) Session() (client.Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session, a.state == StateAuthenticated && a.session.Valid()
}

func (a *authService) Leave(ctx context.Context) Step {
	a.mu.Lock()
	a.epoch++
	if a.pollCancel != nil {
		a.pollCancel()
		a.pollCancel = nil
	}

	from := a.state
	switch a.state {
	case StateStart, StateManualEntry, StateAuthenticated:
	default:
		a.state = StateManualEntry
		a.pending = pending{}
	}
	s := a.stepLocked()
	flowID := a.flowID
	a.mu.Unlock()

	if from != s.State {
		a.log.Info(ctx, "screen left", "flow_id", flowID, "from", from, "to", s.State)
	}
	return s
}

// offerBiometrics runs the one-time opt-in prompt after a successful sign-in
// with a password. It does nothing once the user has answered, or once the
// screen that started it has been left.
func (a *authService) offerBiometrics(ctx context.Context, epoch uint64, email, password string) {
	if !a.current(epoch) || a.cache.FaceAuth(ctx) != nil {
		return
	}
	log := a.flowLog()

	yes, err := a.prompter.ConfirmBiometricOptIn(ctx)
	if err != nil {
		log.Warn(ctx, "biometric opt-in prompt failed", "error", err)
		return
	}
	if !a.current(epoch) {
		log.Info(ctx, "screen left during opt-in, answer dropped")
		return
	}
	if !yes {
		a.cache.Put(ctx, cache.FaceAuthPreference{Answer: cache.AnswerNo})
		log.Info(ctx, "biometric sign-in declined")
		return
	}

	err = a.gate.Prompt(ctx, "Confirm to enable biometric sign-in")
	switch {
	case err == nil:
		a.cache.Put(ctx, cache.FaceAuthPreference{Answer: cache.AnswerYes})
		a.cache.Put(ctx, cache.CachedCredential{User: email, Password: password})
		log.Info(ctx, "biometric sign-in enabled")
	case errors.Is(err, biometric.ErrUnavailable):
		log.Info(ctx, "biometrics unavailable, opt-in postponed", "error", err)
	default:
		a.cache.Put(ctx, cache.FaceAuthPreference{Answer: cache.AnswerNo})
		log.Info(ctx, "biometric confirmation failed, opt-in declined", "error", err)
	}
}
