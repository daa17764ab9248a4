// Package main hosts the rumble-uploader CLI entrypoint and command graph.
//
// The Cobra-based command tree turns one terminal or orchestrator invocation
// into one publish attempt, and adds the operator commands around it: attempt
// history, environment checks, configuration scaffolding and a notification
// test. It centralizes configuration resolution and structured logging setup
// so subcommands can focus on user experience instead of wiring.
//
// Stdout belongs to the publish outcome record. Everything human-readable
// from the publish path, logs included, goes to stderr.
package main
