// Package workflow runs one publish invocation end to end.
//
// The Runner validates the request and credentials before any browser is
// started, then hands a single session to the publish driver through the
// browser controller. Whatever happens inside the session, the Runner turns
// it into exactly one outcome.Outcome: failures are classified, a snapshot
// is captured while the session is still open, and the session is released
// once. Recording the attempt in the history ledger and pushing a
// notification happen afterwards and never change the outcome.
package workflow
