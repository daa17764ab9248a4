// Package notifications pushes publish results to ntfy.
//
// The service publishes to the topic configured under [notifications] in
// config.toml and degrades to a no-op when no topic is set. Delivery problems
// are returned to the caller, which logs them and moves on; a notification
// never changes an invocation's outcome.
package notifications
