// Package publish implements the publish driver: an explicit, forward-only
// state machine that walks the remote site from an anonymous session to a
// confirmed publication.
//
// Each transition is a synchronization point guarded by the wait engine. The
// file input and title field are required; description, tags and license
// controls are optional and are skipped (with a decision log) when the site
// does not render them. The first failing transition halts the run with a
// *failure.PublishError naming the state being entered; an authentication
// failure is returned unchanged as a *failure.AuthError. Nothing is retried.
package publish
