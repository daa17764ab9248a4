package publish

import "fmt"

// State is a position in the publish sequence.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateAssetUploaded
	StateMetadataFilled
	StateSubmitted
	StateConfirmed
)

var stateNames = [...]string{
	StateAnonymous:      "Anonymous",
	StateAuthenticated:  "Authenticated",
	StateAssetUploaded:  "AssetUploaded",
	StateMetadataFilled: "MetadataFilled",
	StateSubmitted:      "Submitted",
	StateConfirmed:      "Confirmed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Next returns the only state s may advance to.
func (s State) Next() (State, bool) {
	if s >= StateConfirmed || s < StateAnonymous {
		return s, false
	}
	return s + 1, true
}

// Terminal reports whether s ends the sequence.
func (s State) Terminal() bool {
	return s == StateConfirmed
}
