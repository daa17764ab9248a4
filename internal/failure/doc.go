// Package failure defines the error markers and structured error types shared
// by the publish workflow.
//
// Every component reports problems through these types so the workflow can
// classify a failure into exactly one outcome kind:
//   - ErrValidation / ErrConfiguration for bad input, raised before any
//     browser session exists.
//   - ErrSession when the remote browser cannot be launched.
//   - *AuthError when the login flow breaks, tagged with the phase.
//   - *PublishError when a publish state transition fails, tagged with the
//     state being entered.
//   - *TimeoutError for bounded waits that expire; it surfaces as the cause of
//     an auth or publish error rather than on its own.
//
// Use Wrap for contextual errors so messages stay uniform across packages.
package failure
