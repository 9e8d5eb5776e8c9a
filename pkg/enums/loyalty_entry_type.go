package enums

import "fmt"

// LoyaltyEntryType maps to the loyalty_entry_type enum in Postgres.
type LoyaltyEntryType string

const (
	LoyaltyEntryEarned   LoyaltyEntryType = "earned"
	LoyaltyEntryRedeemed LoyaltyEntryType = "redeemed"
	LoyaltyEntryExpired  LoyaltyEntryType = "expired"
)

var validLoyaltyEntryTypes = []LoyaltyEntryType{
	LoyaltyEntryEarned,
	LoyaltyEntryRedeemed,
	LoyaltyEntryExpired,
}

// IsValid reports whether the value matches the canonical loyalty entry enum.
func (t LoyaltyEntryType) IsValid() bool {
	for _, candidate := range validLoyaltyEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Sign returns +1 for credits and -1 for debits against the balance.
func (t LoyaltyEntryType) Sign() int64 {
	if t == LoyaltyEntryEarned {
		return 1
	}
	return -1
}

// ParseLoyaltyEntryType converts raw input into LoyaltyEntryType.
func ParseLoyaltyEntryType(value string) (LoyaltyEntryType, error) {
	for _, candidate := range validLoyaltyEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loyalty entry type %q", value)
}
