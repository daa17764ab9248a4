// Package logging assembles structured slog loggers and formatting helpers used
// across rumble-uploader.
//
// It owns the console/JSON handlers, keeps every line on stderr (stdout is
// reserved for the invocation outcome), and exposes context helpers so the
// authenticator and publish driver automatically tag log lines with the run
// identifier and current phase. Attribute keys that look like credentials are
// masked before any handler writes them.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing guarantees as the rest of the tool.
package logging
