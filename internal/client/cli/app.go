package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/pudo/internal/client/biometric"
	"github.com/dmitrijs2005/pudo/internal/client/cache"
	"github.com/dmitrijs2005/pudo/internal/client/client"
	"github.com/dmitrijs2005/pudo/internal/client/config"
	"github.com/dmitrijs2005/pudo/internal/client/directory"
	"github.com/dmitrijs2005/pudo/internal/client/firstrun"
	"github.com/dmitrijs2005/pudo/internal/client/securestore"
	"github.com/dmitrijs2005/pudo/internal/client/services"
	"github.com/dmitrijs2005/pudo/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single connectivity check.
const pingTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type enroller interface {
	Enroll(ctx context.Context, pin []byte) error
}

type App struct {
	config  *config.Config
	auth    services.AuthService
	pinger  pinger
	pin     enroller
	log     logging.Logger
	closers []func() error
	reader  *bufio.Reader
	out     io.Writer

	// mode is written by the status watcher and read by the prompt.
	modeMu sync.RWMutex
	mode   Mode
}

// NewApp builds the client stack described by c. The returned App owns the
// secure store, the gRPC connection and the directory client; Run releases
// them on exit.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	store, closeStore, err := securestore.Open(ctx, c.SecureStorePath)
	if err != nil {
		log.Error(ctx, "error opening secure store", "error", err)
		return nil, err
	}

	marker, err := firstrun.NewFileMarker(c.DataDir)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	backend, err := client.NewGRPCBackend(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	dir := directory.Dial(c.DirectoryAddr)

	reader := bufio.NewReader(os.Stdin)
	gate := biometric.NewPINGate(store, biometric.TerminalReader(), os.Stdout)

	auth := services.NewAuthService(services.Deps{
		Backend:      backend,
		Directory:    dir,
		Cache:        cache.New(store, log),
		Gate:         gate,
		Marker:       marker,
		Prompter:     optInPrompter{reader: reader, out: os.Stdout, pin: gate},
		Log:          log,
		PollInterval: c.PollInterval,
	})

	return &App{
		config:  c,
		auth:    auth,
		pinger:  backend,
		pin:     gate,
		log:     log,
		closers: []func() error{dir.Close, backend.Close, closeStore},
		reader:  reader,
		out:     os.Stdout,
	}, nil
}

// Mode reports the last observed connectivity mode. It is empty until the
// server has answered once.
func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(ctx, fmt.Sprintf("Switched to %s mode", mode))
	}
}

// Run shows the entry screen and serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Warn(ctx, "error closing client resources", "error", err)
		}
	}()
	a.Root(ctx)
}

// Close releases every resource NewApp acquired.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.pinger.Ping(pctx)
	cancel()

	if err != nil {
		if a.Mode() == ModeOnline {
			a.setMode(ctx, ModeOffline)
		}
		return
	}
	a.setMode(ctx, ModeOnline)
}
