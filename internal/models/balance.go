package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceEntry is one directed debt inside a group: debtor owes creditor
// Amount. Keyed by (GroupID, DebtorID, CreditorID); a row exists only while
// Amount > 0, entries hitting zero are deleted rather than kept around.
type BalanceEntry struct {
	GroupID    string          `json:"group_id"`
	DebtorID   string          `json:"debtor_id"`
	CreditorID string          `json:"creditor_id"`
	Amount     decimal.Decimal `json:"amount"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
