package enums

import "fmt"

// WalletTransactionType classifies a ledger entry.
type WalletTransactionType string

const (
	WalletTxRentalPayment      WalletTransactionType = "rental_payment"
	WalletTxRentalIncome       WalletTransactionType = "rental_income"
	WalletTxRentalPayout       WalletTransactionType = "rental_payout"
	WalletTxDepositRelease     WalletTransactionType = "deposit_release"
	WalletTxDepositRefund      WalletTransactionType = "deposit_refund"
	WalletTxDamageCompensation WalletTransactionType = "damage_compensation"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTxRentalPayment,
	WalletTxRentalIncome,
	WalletTxRentalPayout,
	WalletTxDepositRelease,
	WalletTxDepositRefund,
	WalletTxDamageCompensation,
}

// IsValid reports whether the value is a known WalletTransactionType.
func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
