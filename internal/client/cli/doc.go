// Package cli provides the interactive pudo command-line client.
//
// It wires configuration, the secure credential store, the identity backend,
// the account directory and the sign-in orchestrator behind a small REPL.
// Each command drives one orchestrator step; the prompt shows the current
// screen and connectivity mode.
//
// Key features:
//   - Sign in with email and password or a phone verification code
//   - Device PIN sign-in once enabled
//   - Sign up with email verification and phone linking
//   - Sign out, change email and disable device sign-in
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
