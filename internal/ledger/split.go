package ledger

import "github.com/shopspring/decimal"

// Shares divides an expense amount evenly across n participants, rounding
// each share half-up to two decimal places. Because every share is rounded
// independently the shares may not sum back to amount exactly; the drift is
// at most (n-1) cents and is left as-is rather than being pushed onto one
// participant.
func Shares(amount decimal.Decimal, n int) (decimal.Decimal, error) {
	if n <= 0 {
		return decimal.Zero, ErrNoParticipants
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount.DivRound(decimal.NewFromInt(int64(n)), 2), nil
}
