package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseType string

const (
	ExpenseFood          ExpenseType = "food"
	ExpenseRent          ExpenseType = "rent"
	ExpenseTravel        ExpenseType = "travel"
	ExpenseEntertainment ExpenseType = "entertainment"
	ExpenseOther         ExpenseType = "other"
)

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        ExpenseType     `json:"type"`
	// ParticipantIDs are the users sharing the expense, payer included if
	// they carry a share themselves.
	ParticipantIDs []string  `json:"participant_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
