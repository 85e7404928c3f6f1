// Package client holds the contracts of the remote collaborators the sign-in
// flow talks to, and a gRPC implementation of the identity backend.
//
// # Overview
//
//  1. IdentityBackend verifies credentials, issues sessions, delivers phone
//     one-time codes and manages the e-mail address of an account.
//  2. AccountDirectory answers "is this e-mail / phone registered?" and stores
//     the {email, phone} record of each account.
//  3. GRPCBackend implements IdentityBackend over a gRPC connection. A unary
//     interceptor attaches the session token of the call and bounds requests
//     without a deadline; status codes are mapped to sentinel errors.
//
// # Sessions
//
// A Session is a plain value decoded from the backend's id token. It is
// threaded explicitly through every call that acts on behalf of a signed-in
// user; the backend client keeps no "current user".
//
// # Error Handling
//
// Callers match failures with errors.Is against the sentinels in errors.go.
package client
