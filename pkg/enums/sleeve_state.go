package enums

import "fmt"

// SleeveState tracks whether a card type has been sleeved. Unknown is a real
// state: imported sleeve data often omits the flag, and the matching core
// treats unknown the same as unsleeved.
type SleeveState string

const (
	SleeveStateSleeved   SleeveState = "sleeved"
	SleeveStateUnsleeved SleeveState = "unsleeved"
	SleeveStateUnknown   SleeveState = "unknown"
)

var validSleeveStates = []SleeveState{
	SleeveStateSleeved,
	SleeveStateUnsleeved,
	SleeveStateUnknown,
}

// String implements fmt.Stringer.
func (s SleeveState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SleeveState.
func (s SleeveState) IsValid() bool {
	for _, candidate := range validSleeveStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// NeedsSleeving reports whether the requirement still counts as unsleeved.
func (s SleeveState) NeedsSleeving() bool {
	return s == SleeveStateUnsleeved || s == SleeveStateUnknown
}

// ParseSleeveState converts raw input into a SleeveState.
func ParseSleeveState(value string) (SleeveState, error) {
	for _, candidate := range validSleeveStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sleeve state %q", value)
}
