// Package request parses and validates the upload request handed to a single
// publish invocation.
//
// A request is decoded from JSON, normalised (NFC title, de-duplicated tags)
// and validated before any browser session exists, so a bad request is the
// cheapest possible failure.
package request
