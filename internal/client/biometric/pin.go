package biometric

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/dmitrijs2005/pudo/internal/client/securestore"
	"github.com/dmitrijs2005/pudo/internal/common"
	"github.com/dmitrijs2005/pudo/internal/cryptox"
	"golang.org/x/term"
)

const (
	// PINKey is the secure-store key of the enrolled device PIN verifier.
	PINKey = "device_pin"

	// DefaultMaxAttempts is how many PIN entries one Prompt accepts.
	DefaultMaxAttempts = 3

	minPINLength = 4
)

// ErrWeakPIN is returned by Enroll for PINs that are too short or not numeric.
var ErrWeakPIN = errors.New("pin must be at least 4 digits")

// SecretReader reads one secret from the user without echo.
type SecretReader func() ([]byte, error)

// TerminalReader reads from the terminal on stdin. It returns nil when stdin
// is not a terminal, which makes the gate unavailable.
func TerminalReader() SecretReader {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() ([]byte, error) {
		return term.ReadPassword(fd)
	}
}

type pinRecord struct {
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

// PINGate is a Gate backed by a device PIN whose argon2 verifier is kept in
// the secure store. It stands in for a fingerprint or face sensor on
// devices that have none.
type PINGate struct {
	store       securestore.Store
	read        SecretReader
	out         io.Writer
	maxAttempts int
}

func NewPINGate(store securestore.Store, read SecretReader, out io.Writer) *PINGate {
	return &PINGate{store: store, read: read, out: out, maxAttempts: DefaultMaxAttempts}
}

// Enrolled reports whether a PIN has been set on this device.
func (g *PINGate) Enrolled(ctx context.Context) (bool, error) {
	rec, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Enroll replaces the device PIN.
func (g *PINGate) Enroll(ctx context.Context, pin []byte) error {
	if len(pin) < minPINLength || !allDigits(pin) {
		return ErrWeakPIN
	}

	salt := common.GenerateRandByteArray(16)
	rec := pinRecord{Salt: salt, Verifier: cryptox.MakeVerifier(cryptox.DeriveKey(pin, salt))}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, PINKey, raw); err != nil {
		return fmt.Errorf("store pin: %w", err)
	}
	return nil
}

func (g *PINGate) Prompt(ctx context.Context, reason string) error {
	if g.read == nil {
		return ErrUnavailable
	}

	rec, err := g.load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if rec == nil {
		return ErrUnavailable
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return ErrCanceled
		}

		fmt.Fprintf(g.out, "%s\nDevice PIN (empty to cancel): ", reason)
		pin, err := g.read()
		fmt.Fprintln(g.out)
		if err != nil {
			return ErrCanceled
		}
		if len(pin) == 0 {
			return ErrCanceled
		}

		candidate := cryptox.MakeVerifier(cryptox.DeriveKey(pin, rec.Salt))
		common.WipeByteArray(pin)

		if subtle.ConstantTimeCompare(candidate, rec.Verifier) == 1 {
			return nil
		}
		if attempt < g.maxAttempts {
			fmt.Fprintln(g.out, "Wrong PIN, try again.")
		}
	}
	return ErrFailed
}

func (g *PINGate) load(ctx context.Context) (*pinRecord, error) {
	raw, err := g.store.Get(ctx, PINKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rec pinRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if len(rec.Salt) == 0 || len(rec.Verifier) == 0 {
		return nil, nil
	}
	return &rec, nil
}

func allDigits(b []byte) bool {
	return len(bytes.TrimFunc(b, unicode.IsDigit)) == 0
}
