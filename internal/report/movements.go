// Package report aggregates movements over periods and categories.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/casterly-dev/casterly/internal/model"
)

// Movements is a set of movements that can be filtered and totalled.
// Filters return new sets and never modify the receiver.
type Movements []model.Movement

// Expenses is the absolute value of the sum of negative amounts.
func (ms Movements) Expenses() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range ms {
		if m.IsExpense() {
			sum = sum.Add(m.Amount)
		}
	}
	return sum.Abs()
}

// Earnings is the sum of positive amounts.
func (ms Movements) Earnings() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range ms {
		if m.IsEarning() {
			sum = sum.Add(m.Amount)
		}
	}
	return sum
}

// Balance is the sum of all amounts. It is independent of the balances
// stored on the accounts.
func (ms Movements) Balance() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range ms {
		sum = sum.Add(m.Amount)
	}
	return sum
}

// ExpenseMovements returns the movements with a negative amount.
func (ms Movements) ExpenseMovements() Movements {
	return ms.filter(model.Movement.IsExpense)
}

// EarningMovements returns the movements with a positive amount.
func (ms Movements) EarningMovements() Movements {
	return ms.filter(model.Movement.IsEarning)
}

// Between returns the movements dated within [from, to], compared as
// civil dates.
func (ms Movements) Between(from, to time.Time) Movements {
	from, to = model.CivilDate(from), model.CivilDate(to)
	return ms.filter(func(m model.Movement) bool {
		d := model.CivilDate(m.Date)
		return !d.Before(from) && !d.After(to)
	})
}

// PerMonth returns the movements of a calendar month.
func (ms Movements) PerMonth(year, month int) (Movements, error) {
	from, to, err := MonthRange(year, month)
	if err != nil {
		return nil, err
	}
	return ms.Between(from, to), nil
}

// PerWeek returns the movements of an ISO week, Monday to Sunday.
func (ms Movements) PerWeek(year, week int) (Movements, error) {
	from, to, err := WeekRange(year, week)
	if err != nil {
		return nil, err
	}
	return ms.Between(from, to), nil
}

// Sorted returns the movements ordered by date, then ID.
func (ms Movements) Sorted() Movements {
	out := slices.Clone(ms)
	slices.SortStableFunc(out, func(a, b model.Movement) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (ms Movements) filter(keep func(model.Movement) bool) Movements {
	var out Movements
	for _, m := range ms {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// CategoryTotal totals the movements of one category. CategoryID is nil for
// uncategorized movements.
type CategoryTotal struct {
	CategoryID *int64
	Movements  int
	Expenses   decimal.Decimal
	Earnings   decimal.Decimal
	Balance    decimal.Decimal
}

// ByCategory totals the movements per category. Uncategorized movements
// come first, then categories by ID.
func (ms Movements) ByCategory() []CategoryTotal {
	groups := make(map[int64]Movements)
	var ids []int64
	var uncategorized Movements
	for _, m := range ms {
		if m.CategoryID == nil {
			uncategorized = append(uncategorized, m)
			continue
		}
		id := *m.CategoryID
		if _, ok := groups[id]; !ok {
			ids = append(ids, id)
		}
		groups[id] = append(groups[id], m)
	}
	slices.Sort(ids)

	var out []CategoryTotal
	if len(uncategorized) > 0 {
		out = append(out, total(nil, uncategorized))
	}
	for _, id := range ids {
		out = append(out, total(&id, groups[id]))
	}
	return out
}

func total(id *int64, ms Movements) CategoryTotal {
	return CategoryTotal{
		CategoryID: id,
		Movements:  len(ms),
		Expenses:   ms.Expenses(),
		Earnings:   ms.Earnings(),
		Balance:    ms.Balance(),
	}
}

// Summary totals a set of movements over a period.
type Summary struct {
	From      time.Time
	To        time.Time
	Movements int
	Expenses  decimal.Decimal
	Earnings  decimal.Decimal
	Balance   decimal.Decimal
}

// Summarize totals ms for the period [from, to]. ms is not filtered.
func (ms Movements) Summarize(from, to time.Time) Summary {
	return Summary{
		From:      from,
		To:        to,
		Movements: len(ms),
		Expenses:  ms.Expenses(),
		Earnings:  ms.Earnings(),
		Balance:   ms.Balance(),
	}
}
