package enums

import "fmt"

// WalletTransactionStatus is the settlement state of a ledger entry.
// Only completed entries count toward balances.
type WalletTransactionStatus string

const (
	WalletTxStatusCompleted WalletTransactionStatus = "completed"
	WalletTxStatusPending   WalletTransactionStatus = "pending"
	WalletTxStatusFailed    WalletTransactionStatus = "failed"
)

var validWalletTransactionStatuses = []WalletTransactionStatus{
	WalletTxStatusCompleted,
	WalletTxStatusPending,
	WalletTxStatusFailed,
}

// IsValid reports whether the value is a known WalletTransactionStatus.
func (s WalletTransactionStatus) IsValid() bool {
	for _, candidate := range validWalletTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWalletTransactionStatus converts raw input into a WalletTransactionStatus.
func ParseWalletTransactionStatus(value string) (WalletTransactionStatus, error) {
	for _, candidate := range validWalletTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction status %q", value)
}
