package ledger

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// Transaction is one payment instruction produced by Simplify: FromUser pays
// ToUser Amount. It is never persisted as-is; the balance service rewrites
// the group's ledger from the emitted set.
type Transaction struct {
	FromUser string          `json:"from_user"`
	ToUser   string          `json:"to_user"`
	Amount   decimal.Decimal `json:"amount"`
}

type userBalance struct {
	userID string
	amount decimal.Decimal
}

// balanceHeap is a max-heap on amount. Equal amounts order by user ID so the
// output is deterministic regardless of map iteration order.
type balanceHeap []userBalance

func (h balanceHeap) Len() int { return len(h) }
func (h balanceHeap) Less(i, j int) bool {
	if c := h[i].amount.Cmp(h[j].amount); c != 0 {
		return c > 0
	}
	return h[i].userID < h[j].userID
}
func (h balanceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *balanceHeap) Push(x any)        { *h = append(*h, x.(userBalance)) }
func (h *balanceHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Simplify reduces a net-balance map to a near-minimal set of payment
// instructions with the same net effect. It repeatedly matches the largest
// creditor against the largest debtor and settles the smaller of the two
// amounts; whichever side keeps a remainder goes back on its heap. When both
// sides clear exactly, neither is re-pushed, so a pair of equal balances
// costs a single transaction.
//
// The number of emitted transactions never exceeds the number of users with
// a nonzero net balance. Simplify never mutates its input.
func Simplify(net map[string]decimal.Decimal) []Transaction {
	creditors := make(balanceHeap, 0, len(net))
	debtors := make(balanceHeap, 0, len(net))
	for userID, balance := range net {
		switch balance.Sign() {
		case 1:
			creditors = append(creditors, userBalance{userID, balance})
		case -1:
			debtors = append(debtors, userBalance{userID, balance.Abs()})
		}
	}
	heap.Init(&creditors)
	heap.Init(&debtors)

	var transactions []Transaction
	for creditors.Len() > 0 && debtors.Len() > 0 {
		creditor := heap.Pop(&creditors).(userBalance)
		debtor := heap.Pop(&debtors).(userBalance)

		amount := decimal.Min(creditor.amount, debtor.amount)
		transactions = append(transactions, Transaction{
			FromUser: debtor.userID,
			ToUser:   creditor.userID,
			Amount:   amount,
		})

		if rest := creditor.amount.Sub(amount); rest.Sign() > 0 {
			heap.Push(&creditors, userBalance{creditor.userID, rest})
		}
		if rest := debtor.amount.Sub(amount); rest.Sign() > 0 {
			heap.Push(&debtors, userBalance{debtor.userID, rest})
		}
	}
	return transactions
}
