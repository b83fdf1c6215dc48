package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/smartsplit/expense-splitter/internal/models"
)

// NetPositions folds a group's ledger entries into one signed balance per
// user: positive means the user is owed money overall, negative means they
// owe. Users that appear in no entry are absent from the map.
func NetPositions(entries []models.BalanceEntry) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		net[e.DebtorID] = net[e.DebtorID].Sub(e.Amount)
		net[e.CreditorID] = net[e.CreditorID].Add(e.Amount)
	}
	return net
}
