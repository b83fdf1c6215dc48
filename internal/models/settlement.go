package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement records a real-world payment from payer to payee that reduces
// an outstanding ledger entry between them.
type Settlement struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	PayerID   string          `json:"payer_id"`
	PayeeID   string          `json:"payee_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
