package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"
)

// onlineCheckInterval is the period of the connectivity watcher.
const onlineCheckInterval = 10 * time.Second

func (a *App) getStatus() string {
	s := ""
	if sess, ok := a.auth.Session(); ok {
		s = sess.Email + " "
	} else {
		s = a.auth.State().String() + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	s = strings.TrimSpace(s)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to pudo (type 'help' for commands)")

	_ = a.Start(ctx)

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
