package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account is a bank account whose running balance is kept by the ledger.
type Account struct {
	ID             int64
	Owner          string
	Description    string
	LastDigits     string
	Entity         Entity
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
}

// String renders the account the way listings show it: "lloyds <****4321> - 14.39".
func (a Account) String() string {
	return fmt.Sprintf("%s <****%s> - %s", a.Entity, a.LastDigits, a.CurrentBalance.StringFixed(2))
}

// NewAccount holds the fields needed to open an account.
// CurrentBalance defaults to InitialBalance when not set.
type NewAccount struct {
	Owner          string
	Description    string
	LastDigits     string
	Entity         Entity
	InitialBalance decimal.Decimal
	CurrentBalance decimal.NullDecimal
}
