package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	errPINMismatch = errors.New("pins do not match")
	errNoPIN       = errors.New("no device pin set")
)

type enrollment interface {
	Enrolled(ctx context.Context) (bool, error)
}

// optInPrompter asks on the terminal whether device sign-in should be
// enabled after a successful password sign-in. Without a device PIN it
// only points at the 'pin' command and leaves the question open.
type optInPrompter struct {
	reader *bufio.Reader
	out    io.Writer
	pin    enrollment
}

func (p optInPrompter) ConfirmBiometricOptIn(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p.pin != nil {
		ok, err := p.pin.Enrolled(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			fmt.Fprintln(p.out, "Tip: type 'pin' to set a device PIN, then sign in again to enable device sign-in.")
			return false, errNoPIN
		}
	}
	ans, err := getSimpleText(p.reader, "Enable device PIN sign-in on this device? (y/n)", p.out)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
