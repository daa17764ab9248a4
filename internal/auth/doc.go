// Package auth drives the login phase of a publish invocation and carries the
// account credentials.
//
// Credentials are read from the environment exactly once by the caller and
// never rendered: String and LogValue report only whether each is set. Authenticate
// walks the login flow one phase at a time, each bounded by the wait engine,
// and reports the first failure as a *failure.AuthError naming the phase.
// Authentication is attempted once; there is no retry.
package auth
