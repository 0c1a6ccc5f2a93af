package types

// DamageReport is the owner-supplied damage claim attached at completion.
// The claimed amount is deducted from the renter's deposit refund during
// settlement.
type DamageReport struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}
