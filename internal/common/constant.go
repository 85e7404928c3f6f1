// Package common contains shared constants and helpers used across
// pudo client components.
package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the
// identity session token on outbound requests.
const SessionTokenHeaderName = "x-session-token"

// AppName is shown in user-facing prompts.
const AppName = "pudo"
