package logging

import "strings"

const shortRunIDLength = 8

// FormatSubject builds the run/phase subject string used in console output.
// Run identifiers are shortened to their first eight characters.
func FormatSubject(runID, phase string) string {
	runID = strings.TrimSpace(runID)
	phase = strings.TrimSpace(phase)
	if len(runID) > shortRunIDLength {
		runID = runID[:shortRunIDLength]
	}
	switch {
	case runID != "" && phase != "":
		return runID + " · " + phase
	case runID != "":
		return runID
	default:
		return phase
	}
}
