package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/pudo/internal/client/cache"
	"github.com/dmitrijs2005/pudo/internal/client/client"
	"github.com/dmitrijs2005/pudo/internal/client/securestore"
	"github.com/dmitrijs2005/pudo/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// ---- fake identity backend ----

type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	authHook    func()
	authSession client.Session
	authErr     error
	lastAuth    [2]string

	createSession client.Session
	createErr     error
	sendVerifyErr error
	resetErr      error
	resetEmails   []string

	otpHandles []string
	otpErr     error
	otpPhones  []string

	linkSession client.Session
	linkErr     error
	lastLink    [2]string

	phoneSession client.Session
	phoneErr     error

	providerSession client.Session
	providerErr     error
	lastProvider    [2]string

	updateErr    error
	updateEmails []string
	signOutErr   error

	reloads  int
	reloadFn func(n int) (client.Session, error)
	reloaded chan int
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Authenticate(ctx context.Context, identifier, secret string) (client.Session, error) {
	f.record("Authenticate")
	if f.authHook != nil {
		f.authHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuth = [2]string{identifier, secret}
	return f.authSession, f.authErr
}

func (f *fakeBackend) CreateAccount(ctx context.Context, email, secret string) (client.Session, error) {
	f.record("CreateAccount")
	return f.createSession, f.createErr
}

func (f *fakeBackend) SendVerificationEmail(ctx context.Context, s client.Session) error {
	f.record("SendVerificationEmail")
	return f.sendVerifyErr
}

func (f *fakeBackend) SendPasswordReset(ctx context.Context, email string) error {
	f.record("SendPasswordReset")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetEmails = append(f.resetEmails, email)
	return f.resetErr
}

func (f *fakeBackend) SendPhoneOtp(ctx context.Context, e164 string) (string, error) {
	f.record("SendPhoneOtp")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otpPhones = append(f.otpPhones, e164)
	if f.otpErr != nil {
		return "", f.otpErr
	}
	if len(f.otpHandles) == 0 {
		return "handle", nil
	}
	h := f.otpHandles[0]
	f.otpHandles = f.otpHandles[1:]
	return h, nil
}

func (f *fakeBackend) LinkPhoneCredential(ctx context.Context, s client.Session, handle, code string) (client.Session, error) {
	f.record("LinkPhoneCredential")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLink = [2]string{handle, code}
	return f.linkSession, f.linkErr
}

func (f *fakeBackend) SignInWithPhone(ctx context.Context, handle, code string) (client.Session, error) {
	f.record("SignInWithPhone")
	return f.phoneSession, f.phoneErr
}

func (f *fakeBackend) SignInWithIDToken(ctx context.Context, provider, idToken string) (client.Session, error) {
	f.record("SignInWithIDToken")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProvider = [2]string{provider, idToken}
	return f.providerSession, f.providerErr
}

func (f *fakeBackend) UpdateEmail(ctx context.Context, s client.Session, newEmail string) error {
	f.record("UpdateEmail")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateEmails = append(f.updateEmails, newEmail)
	return f.updateErr
}

func (f *fakeBackend) SignOut(ctx context.Context, s client.Session) error {
	f.record("SignOut")
	return f.signOutErr
}

func (f *fakeBackend) Reload(ctx context.Context, s client.Session) (client.Session, error) {
	f.record("Reload")
	f.mu.Lock()
	f.reloads++
	n := f.reloads
	fn := f.reloadFn
	f.mu.Unlock()

	var (
		out client.Session
		err error
	)
	if fn != nil {
		out, err = fn(n)
	} else {
		out = s
	}
	if f.reloaded != nil {
		f.reloaded <- n
	}
	return out, err
}

func (f *fakeBackend) reloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads
}

// ---- fake account directory ----

type lookup struct {
	field client.Field
	value string
}

type fakeDirectory struct {
	mu         sync.Mutex
	registered map[lookup]bool
	records    map[string]client.DirectoryRecord
	lookups    []lookup
	err        error
	upsertErr  error
	recordErrs []error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{registered: map[lookup]bool{}, records: map[string]client.DirectoryRecord{}}
}

func (d *fakeDirectory) register(field client.Field, value string) {
	d.registered[lookup{field, value}] = true
}

func (d *fakeDirectory) IsRegistered(ctx context.Context, field client.Field, value string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups = append(d.lookups, lookup{field, value})
	if d.err != nil {
		return false, d.err
	}
	return d.registered[lookup{field, value}], nil
}

func (d *fakeDirectory) UpsertRecord(ctx context.Context, id string, rec client.DirectoryRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.upsertErr != nil {
		return d.upsertErr
	}
	d.records[id] = rec
	return nil
}

func (d *fakeDirectory) Record(ctx context.Context, id string) (client.DirectoryRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.recordErrs) > 0 {
		err := d.recordErrs[0]
		d.recordErrs = d.recordErrs[1:]
		return client.DirectoryRecord{}, err
	}
	rec, ok := d.records[id]
	if !ok {
		return client.DirectoryRecord{}, client.ErrNotFound
	}
	return rec, nil
}

// ---- fake biometric gate, prompter, marker ----

type fakeGate struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (g *fakeGate) Prompt(ctx context.Context, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.results) == 0 {
		return nil
	}
	err := g.results[0]
	g.results = g.results[1:]
	return err
}

type fakePrompter struct {
	answer bool
	err    error
	calls  int
	onAsk  func()
}

func (p *fakePrompter) ConfirmBiometricOptIn(ctx context.Context) (bool, error) {
	p.calls++
	if p.onAsk != nil {
		p.onAsk()
	}
	return p.answer, p.err
}

type fakeMarker struct {
	seen    bool
	seenErr error
	setErr  error
	sets    int
}

func (m *fakeMarker) Seen(ctx context.Context) (bool, error) {
	return m.seen, m.seenErr
}

func (m *fakeMarker) Set(ctx context.Context) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.seen = true
	return nil
}

// ---- harness ----

type harness struct {
	svc      *authService
	backend  *fakeBackend
	dir      *fakeDirectory
	gate     *fakeGate
	prompter *fakePrompter
	marker   *fakeMarker
	store    *securestore.MemoryStore
	cache    *cache.CredentialCache
	clock    *clockwork.FakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		backend:  &fakeBackend{},
		dir:      newFakeDirectory(),
		gate:     &fakeGate{},
		prompter: &fakePrompter{},
		marker:   &fakeMarker{seen: true},
		store:    securestore.NewMemoryStore(),
		clock:    clockwork.NewFakeClock(),
	}
	h.cache = cache.New(h.store, logging.Discard())

	svc, ok := NewAuthService(Deps{
		Backend:   h.backend,
		Directory: h.dir,
		Cache:     h.cache,
		Gate:      h.gate,
		Marker:    h.marker,
		Prompter:  h.prompter,
		Log:       logging.Discard(),
		Clock:     h.clock,
	}).(*authService)
	require.True(t, ok)
	h.svc = svc
	return h
}

// at puts the flow on a screen directly.
func (h *harness) at(s State, p pending) {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.svc.state = s
	h.svc.pending = p
}

func (h *harness) signedIn(sess client.Session) {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.svc.state = StateAuthenticated
	h.svc.session = sess
}

func (h *harness) raw(t *testing.T, key cache.Key) string {
	t.Helper()
	v, err := h.store.Get(context.Background(), string(key))
	require.NoError(t, err)
	return string(v)
}

var verified = client.Session{UID: "uid-1", Email: "a@b.com", EmailVerified: true, Token: "T"}
