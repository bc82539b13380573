package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/store"
)

// Verification compares an account's stored balance with its movements.
type Verification struct {
	Account   model.Account
	Movements int
	// Expected is the initial balance plus the sum of every movement.
	Expected decimal.Decimal
	// LastSnapshot is the balance stamped on the most recently created movement.
	LastSnapshot decimal.NullDecimal
	// Unstamped counts movements without a balance snapshot.
	Unstamped int
}

// Consistent reports whether the stored balance matches the movements and
// the latest snapshot.
func (v Verification) Consistent() bool {
	if !v.Expected.Equal(v.Account.CurrentBalance) || v.Unstamped > 0 {
		return false
	}
	if v.LastSnapshot.Valid && !v.LastSnapshot.Decimal.Equal(v.Account.CurrentBalance) {
		return false
	}
	return true
}

// Verify recomputes an account's balance from its movements. It never writes.
func (l *Ledger) Verify(ctx context.Context, accountID int64) (Verification, error) {
	q := l.store.Queries()
	acct, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return Verification{}, err
	}
	movements, err := q.ListMovements(ctx, store.MovementFilter{AccountID: accountID})
	if err != nil {
		return Verification{}, err
	}

	v := Verification{Account: acct, Movements: len(movements), Expected: acct.InitialBalance}
	var lastID int64
	for _, m := range movements {
		v.Expected = v.Expected.Add(m.Amount)
		if !m.Balance.Valid {
			v.Unstamped++
		}
		if m.ID > lastID {
			lastID = m.ID
			v.LastSnapshot = m.Balance
		}
	}
	v.Expected = model.Currency(v.Expected)
	return v, nil
}
