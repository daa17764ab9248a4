// Package history persists one row per publish attempt in a local SQLite
// database so operators can audit what the uploader did without scraping
// logs. Recording is best-effort from the caller's point of view: a failed
// write never changes an invocation's outcome.
package history
