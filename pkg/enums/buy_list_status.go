package enums

import "fmt"

// BuyListStatus is the lifecycle of a tracked buy-list entry.
type BuyListStatus string

const (
	BuyListStatusWatching BuyListStatus = "watching"
	BuyListStatusOrdered  BuyListStatus = "ordered"
	BuyListStatusBought   BuyListStatus = "bought"
)

var validBuyListStatuses = []BuyListStatus{
	BuyListStatusWatching,
	BuyListStatusOrdered,
	BuyListStatusBought,
}

// String implements fmt.Stringer.
func (s BuyListStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BuyListStatus.
func (s BuyListStatus) IsValid() bool {
	for _, candidate := range validBuyListStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBuyListStatus converts raw input into a BuyListStatus.
func ParseBuyListStatus(value string) (BuyListStatus, error) {
	for _, candidate := range validBuyListStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid buy list status %q", value)
}
