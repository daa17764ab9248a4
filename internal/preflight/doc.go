// Package preflight provides readiness checks for the browser, filesystem
// paths, credentials and the publish site that the uploader depends on.
//
// The CLI "rumble-uploader doctor" command runs RunAll and renders the
// results; individual checks (CheckDirectoryAccess, CheckSite) are exported
// for reuse. Checks report credential variable names only, never values.
// Checks for disabled features are skipped.
package preflight
