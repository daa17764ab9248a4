// Package browser owns the remote browser session used by one publish
// invocation.
//
// Page is the narrow port the authenticator, publish driver and snapshot
// capturer drive; ChromeLauncher implements it on top of chromedp. Page
// operations return immediately: navigation only starts a load, and readiness
// is observed through checks (Exists, DocumentReplaced) polled by the wait
// engine, which keeps the wait engine the only place that suspends.
//
// Controller provides scoped acquisition. Do launches a session, runs the
// caller's workflow against it, and releases it exactly once whether the
// workflow returns, fails, or panics.
package browser
