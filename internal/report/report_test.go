package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casterly-dev/casterly/internal/ledger"
	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/statement"
	"github.com/casterly-dev/casterly/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixtureRecords(t *testing.T) []statement.Record {
	t.Helper()
	fh, err := os.Open("../../testdata/lloyds_statement.csv")
	require.NoError(t, err)
	defer fh.Close()

	records, err := statement.ParseEntity(fh, model.EntityLloyds, statement.Options{HeaderLines: 1, ReverseOrder: true})
	require.NoError(t, err)
	require.Len(t, records, 23)
	return records
}

// fixture returns the 23 statement movements in memory, oldest first.
func fixture(t *testing.T) Movements {
	t.Helper()
	var ms Movements
	for i, r := range fixtureRecords(t) {
		ms = append(ms, model.Movement{
			ID:          int64(i + 1),
			AccountID:   1,
			Description: r.Description,
			Amount:      r.Amount,
			Balance:     r.Balance,
			Date:        r.Date,
		})
	}
	return ms
}

func assertTotals(t *testing.T, ms Movements, count int, expenses, earnings, balance string) {
	t.Helper()
	assert.Len(t, ms, count)
	assert.Equal(t, expenses, ms.Expenses().StringFixed(2), "expenses")
	assert.Equal(t, earnings, ms.Earnings().StringFixed(2), "earnings")
	assert.Equal(t, balance, ms.Balance().StringFixed(2), "balance")
}

func TestMovements_Totals(t *testing.T) {
	ms := fixture(t)
	assertTotals(t, ms, 23, "3032.16", "5002.76", "1970.60")

	assert.Len(t, ms.ExpenseMovements(), 18)
	assert.Len(t, ms.EarningMovements(), 5)
	assert.True(t, ms.ExpenseMovements().Earnings().IsZero())
	assert.True(t, ms.EarningMovements().Expenses().IsZero())
}

func TestMovements_Empty(t *testing.T) {
	var ms Movements
	assert.True(t, ms.Expenses().IsZero())
	assert.True(t, ms.Earnings().IsZero())
	assert.True(t, ms.Balance().IsZero())
	assert.Empty(t, ms.ByCategory())
}

func TestMovements_PerMonth(t *testing.T) {
	ms := fixture(t)
	tests := []struct {
		year, month                 int
		count                       int
		expenses, earnings, balance string
	}{
		{2011, 12, 3, "176.86", "1567.00", "1390.14"},
		{2012, 1, 11, "1304.96", "1868.76", "563.80"},
		{2012, 2, 9, "1550.34", "1567.00", "16.66"},
		{2012, 3, 0, "0.00", "0.00", "0.00"},
	}
	for _, tt := range tests {
		got, err := ms.PerMonth(tt.year, tt.month)
		require.NoError(t, err)
		assertTotals(t, got, tt.count, tt.expenses, tt.earnings, tt.balance)
	}
}

func TestMovements_PerMonthLeapDay(t *testing.T) {
	ms := fixture(t)
	feb, err := ms.PerMonth(2012, 2)
	require.NoError(t, err)
	last := feb[len(feb)-1]
	assert.Equal(t, "Salary February", last.Description)
	assert.Equal(t, 29, last.Date.Day())
}

func TestMovements_PerWeek(t *testing.T) {
	ms := fixture(t)
	tests := []struct {
		year, week                  int
		count                       int
		expenses, earnings, balance string
	}{
		{2011, 51, 1, "134.30", "0.00", "-134.30"},
		{2011, 52, 2, "42.56", "1567.00", "1524.44"},
		{2012, 1, 2, "43.20", "300.00", "256.80"},
		{2012, 2, 3, "939.35", "0.00", "-939.35"},
		{2012, 3, 2, "18.00", "1.76", "-16.24"},
		{2012, 4, 2, "72.48", "0.00", "-72.48"},
		{2012, 5, 4, "557.50", "1567.00", "1009.50"},
		{2012, 6, 2, "879.80", "0.00", "-879.80"},
		{2012, 7, 2, "209.87", "0.00", "-209.87"},
		{2012, 8, 1, "37.80", "0.00", "-37.80"},
		{2012, 9, 2, "97.30", "1567.00", "1469.70"},
	}
	for _, tt := range tests {
		got, err := ms.PerWeek(tt.year, tt.week)
		require.NoError(t, err)
		assertTotals(t, got, tt.count, tt.expenses, tt.earnings, tt.balance)
	}
}

func TestMovements_Between(t *testing.T) {
	ms := fixture(t)
	got := ms.Between(model.Date(2011, 12, 31), time.Date(2012, 1, 3, 18, 30, 0, 0, time.UTC))
	assertTotals(t, got, 3, "42.56", "1867.00", "1824.44")
}

func TestMovements_Sorted(t *testing.T) {
	ms := Movements{
		{ID: 3, Date: model.Date(2012, 1, 2)},
		{ID: 1, Date: model.Date(2012, 1, 5)},
		{ID: 2, Date: model.Date(2012, 1, 2)},
	}
	sorted := ms.Sorted()
	assert.Equal(t, []int64{2, 3, 1}, []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, int64(3), ms[0].ID)
}

func TestMovements_ByCategory(t *testing.T) {
	food, rent := int64(1), int64(2)
	ms := Movements{
		{ID: 1, Amount: dec("-12.50"), CategoryID: &rent},
		{ID: 2, Amount: dec("-3.20"), CategoryID: &food},
		{ID: 3, Amount: dec("1.00")},
		{ID: 4, Amount: dec("-6.80"), CategoryID: &food},
		{ID: 5, Amount: dec("2.00"), CategoryID: &food},
	}

	totals := ms.ByCategory()
	require.Len(t, totals, 3)

	assert.Nil(t, totals[0].CategoryID)
	assert.Equal(t, 1, totals[0].Movements)
	assert.Equal(t, "1.00", totals[0].Balance.StringFixed(2))

	require.NotNil(t, totals[1].CategoryID)
	assert.Equal(t, food, *totals[1].CategoryID)
	assert.Equal(t, 3, totals[1].Movements)
	assert.Equal(t, "10.00", totals[1].Expenses.StringFixed(2))
	assert.Equal(t, "2.00", totals[1].Earnings.StringFixed(2))
	assert.Equal(t, "-8.00", totals[1].Balance.StringFixed(2))

	assert.Equal(t, rent, *totals[2].CategoryID)
	assert.Equal(t, "-12.50", totals[2].Balance.StringFixed(2))
}

func TestMonthRange(t *testing.T) {
	from, to, err := MonthRange(2012, 2)
	require.NoError(t, err)
	assert.Equal(t, model.Date(2012, 2, 1), from)
	assert.Equal(t, model.Date(2012, 2, 29), to)

	_, to, err = MonthRange(2011, 2)
	require.NoError(t, err)
	assert.Equal(t, 28, to.Day())

	_, to, err = MonthRange(2011, 12)
	require.NoError(t, err)
	assert.Equal(t, model.Date(2011, 12, 31), to)

	for _, m := range []int{0, 13, -1} {
		_, _, err := MonthRange(2012, m)
		assert.Error(t, err, "month %d", m)
	}
	_, _, err = MonthRange(0, 1)
	assert.Error(t, err)
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		year, week int
		from, to   time.Time
	}{
		{2012, 1, model.Date(2012, 1, 2), model.Date(2012, 1, 8)},
		{2012, 5, model.Date(2012, 1, 30), model.Date(2012, 2, 5)},
		{2011, 52, model.Date(2011, 12, 26), model.Date(2012, 1, 1)},
		// Week 1 of 2015 starts in the previous year.
		{2015, 1, model.Date(2014, 12, 29), model.Date(2015, 1, 4)},
		{2015, 53, model.Date(2015, 12, 28), model.Date(2016, 1, 3)},
		{2021, 1, model.Date(2021, 1, 4), model.Date(2021, 1, 10)},
	}
	for _, tt := range tests {
		from, to, err := WeekRange(tt.year, tt.week)
		require.NoError(t, err)
		assert.Equal(t, tt.from, from, "%d-W%d", tt.year, tt.week)
		assert.Equal(t, tt.to, to, "%d-W%d", tt.year, tt.week)
		assert.Equal(t, time.Monday, from.Weekday())

		y, w := from.ISOWeek()
		assert.Equal(t, tt.year, y)
		assert.Equal(t, tt.week, w)
	}
}

func TestWeekRange_Invalid(t *testing.T) {
	assert.Equal(t, 52, WeeksInYear(2012))
	assert.Equal(t, 53, WeeksInYear(2015))

	for _, w := range []int{0, 53, 54} {
		_, _, err := WeekRange(2012, w)
		assert.Error(t, err, "week %d", w)
	}
}

func TestService_Reports(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "casterly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := ledger.New(db)
	a, err := l.OpenAccount(ctx, model.NewAccount{
		Description: "current", LastDigits: "4567", Entity: model.EntityLloyds,
		InitialBalance: dec("340"),
	})
	require.NoError(t, err)
	for _, r := range fixtureRecords(t) {
		_, err := l.CreateMovement(ctx, model.NewMovement{
			AccountID: a.ID, Description: r.Description, Amount: r.Amount, Date: r.Date,
		})
		require.NoError(t, err)
	}

	svc := NewService(db.Queries())

	feb, err := svc.Month(ctx, a.ID, 2012, 2)
	require.NoError(t, err)
	assert.Equal(t, 9, feb.Summary.Movements)
	assert.Equal(t, "16.66", feb.Summary.Balance.StringFixed(2))
	assert.Equal(t, model.Date(2012, 2, 29), feb.Summary.To)
	require.Len(t, feb.Categories, 1)
	assert.Nil(t, feb.Categories[0].CategoryID)

	w5, err := svc.Week(ctx, a.ID, 2012, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, w5.Summary.Movements)
	assert.Equal(t, "557.50", w5.Summary.Expenses.StringFixed(2))
	assert.Equal(t, "1567.00", w5.Summary.Earnings.StringFixed(2))
	assert.Equal(t, "1009.50", w5.Summary.Balance.StringFixed(2))

	all, err := svc.Range(ctx, 0, model.Date(2011, 1, 1), model.Date(2012, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "1970.60", all.Summary.Balance.StringFixed(2))

	_, err = svc.Week(ctx, a.ID, 2012, 53)
	assert.Error(t, err)

	// Reporting leaves the account untouched.
	v, err := l.Verify(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, v.Consistent())
	assert.Equal(t, "2310.60", v.Account.CurrentBalance.StringFixed(2))
}

func TestWriteCSV(t *testing.T) {
	food := int64(4)
	ms := Movements{
		{
			ID: 1, AccountID: 2, Description: "Dinner, and beers", Amount: dec("-43.2"),
			Balance: decimal.NewNullDecimal(dec("1986.94")), Date: model.Date(2012, 1, 7), CategoryID: &food,
		},
		{ID: 2, AccountID: 2, Description: "Football bet", Amount: dec("300"), Date: model.Date(2012, 1, 3)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ms, map[int64]string{food: "Eating out"}))

	want := Header + "\n" +
		"1,2012-01-07,2,\"Dinner, and beers\",-43.20,1986.94,Eating out\n" +
		"2,2012-01-03,2,Football bet,300.00,,\n"
	assert.Equal(t, want, buf.String())
}
