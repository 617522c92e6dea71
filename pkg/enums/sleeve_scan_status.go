package enums

import "fmt"

// SleeveScanStatus records the outcome of looking up a game's sleeve
// requirements (automated scan or manual entry).
type SleeveScanStatus string

const (
	SleeveScanStatusFound    SleeveScanStatus = "found"
	SleeveScanStatusNotFound SleeveScanStatus = "not_found"
	SleeveScanStatusError    SleeveScanStatus = "error"
	SleeveScanStatusManual   SleeveScanStatus = "manual"
	SleeveScanStatusUnset    SleeveScanStatus = "unset"
)

var validSleeveScanStatuses = []SleeveScanStatus{
	SleeveScanStatusFound,
	SleeveScanStatusNotFound,
	SleeveScanStatusError,
	SleeveScanStatusManual,
	SleeveScanStatusUnset,
}

// String implements fmt.Stringer.
func (s SleeveScanStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SleeveScanStatus.
func (s SleeveScanStatus) IsValid() bool {
	for _, candidate := range validSleeveScanStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// HasRequirements reports whether sleeve data exists for the game.
func (s SleeveScanStatus) HasRequirements() bool {
	return s == SleeveScanStatusFound || s == SleeveScanStatusManual
}

// ParseSleeveScanStatus converts raw input into a SleeveScanStatus.
func ParseSleeveScanStatus(value string) (SleeveScanStatus, error) {
	for _, candidate := range validSleeveScanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sleeve scan status %q", value)
}
