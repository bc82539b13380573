package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the civil date layout used for storage and display.
const DateFormat = "2006-01-02"

// MaxDescriptionLen bounds movement descriptions.
const MaxDescriptionLen = 50

// Movement is a single dated, signed transaction against an account.
type Movement struct {
	ID          int64
	AccountID   int64
	CategoryID  *int64
	Description string
	Amount      decimal.Decimal // negative = expense, positive = earning
	Balance     decimal.NullDecimal
	Date        time.Time
}

// IsExpense reports whether the movement takes money out of the account.
func (m Movement) IsExpense() bool { return m.Amount.IsNegative() }

// IsEarning reports whether the movement puts money into the account.
func (m Movement) IsEarning() bool { return m.Amount.IsPositive() }

func (m Movement) String() string {
	return fmt.Sprintf("%d - %s - %s", m.AccountID, m.Date.Format("02/01/2006"), m.Amount.StringFixed(2))
}

// NewMovement holds the fields of a movement before it is persisted.
// The tuple (AccountID, Description, Amount, Date, CategoryID) is the dedup key.
type NewMovement struct {
	AccountID   int64
	CategoryID  *int64
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}

// Validate normalizes the amount and date and checks field bounds.
func (n *NewMovement) Validate() error {
	if n.AccountID <= 0 {
		return fmt.Errorf("movement needs an account")
	}
	if n.Description == "" {
		return fmt.Errorf("movement needs a description")
	}
	if len([]rune(n.Description)) > MaxDescriptionLen {
		return fmt.Errorf("description %q longer than %d characters", n.Description, MaxDescriptionLen)
	}
	if n.Date.IsZero() {
		return fmt.Errorf("movement needs a date")
	}
	n.Amount = Currency(n.Amount)
	n.Date = CivilDate(n.Date)
	return nil
}

// CivilDate truncates t to midnight UTC of its calendar day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
