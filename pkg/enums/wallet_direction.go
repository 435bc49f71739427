package enums

import "fmt"

// WalletDirection marks whether a wallet entry adds or removes funds.
type WalletDirection string

const (
	WalletDirectionCredit WalletDirection = "credit"
	WalletDirectionDebit  WalletDirection = "debit"
)

var validWalletDirections = []WalletDirection{
	WalletDirectionCredit,
	WalletDirectionDebit,
}

// IsValid reports whether the value is a known WalletDirection.
func (w WalletDirection) IsValid() bool {
	for _, candidate := range validWalletDirections {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWalletDirection converts raw input into a WalletDirection.
func ParseWalletDirection(value string) (WalletDirection, error) {
	for _, candidate := range validWalletDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet direction %q", value)
}
