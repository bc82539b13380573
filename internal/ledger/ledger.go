// Package ledger keeps account balances consistent with their movements.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/casterly-dev/casterly/internal/logger"
	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/store"
)

// Store is the persistence the ledger needs: plain queries plus transactions.
type Store interface {
	Queries() store.Queries
	Transaction(ctx context.Context, fn func(store.Queries) error) error
}

// Ledger is the only writer of account balances. Movement creation for one
// account is serialized, and each creation runs in a single transaction.
type Ledger struct {
	store Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a Ledger over s.
func New(s Store) *Ledger {
	return &Ledger{store: s, locks: make(map[int64]*sync.Mutex)}
}

func (l *Ledger) lock(accountID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// OpenAccount validates and stores a new account. The current balance starts
// at the initial balance unless one is given explicitly.
func (l *Ledger) OpenAccount(ctx context.Context, p model.NewAccount) (model.Account, error) {
	if !p.Entity.Valid() {
		return model.Account{}, fmt.Errorf("unknown entity %q", p.Entity)
	}
	if p.Description == "" || len([]rune(p.Description)) > model.MaxDescriptionLen {
		return model.Account{}, fmt.Errorf("account description must be 1 to %d characters", model.MaxDescriptionLen)
	}
	if !validLastDigits(p.LastDigits) {
		return model.Account{}, fmt.Errorf("last digits %q must be 4 digits", p.LastDigits)
	}

	a := model.Account{
		Owner:          p.Owner,
		Description:    p.Description,
		LastDigits:     p.LastDigits,
		Entity:         p.Entity,
		InitialBalance: model.Currency(p.InitialBalance),
	}
	a.CurrentBalance = a.InitialBalance
	if p.CurrentBalance.Valid {
		a.CurrentBalance = model.Currency(p.CurrentBalance.Decimal)
	}

	if err := l.store.Queries().InsertAccount(ctx, &a); err != nil {
		return model.Account{}, persistence("open account", err)
	}
	logger.FromContext(ctx).Info().Int64("account_id", a.ID).Str("entity", string(a.Entity)).Msg("account opened")
	return a, nil
}

func validLastDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// CreateMovement persists a movement and applies it to its account's balance.
// Either the movement, the account balance and the snapshot are all written,
// or nothing is.
func (l *Ledger) CreateMovement(ctx context.Context, n model.NewMovement) (model.Movement, error) {
	m, _, err := l.create(ctx, n, false)
	return m, err
}

// GetOrCreateMovement returns the movement matching n's dedup key
// (account, description, amount, date, category) if one exists; otherwise it
// creates it like CreateMovement. created reports which happened.
func (l *Ledger) GetOrCreateMovement(ctx context.Context, n model.NewMovement) (m model.Movement, created bool, err error) {
	return l.create(ctx, n, true)
}

func (l *Ledger) create(ctx context.Context, n model.NewMovement, dedup bool) (model.Movement, bool, error) {
	if err := n.Validate(); err != nil {
		return model.Movement{}, false, fmt.Errorf("invalid movement: %w", err)
	}

	unlock := l.lock(n.AccountID)
	defer unlock()

	var (
		m       model.Movement
		created bool
	)
	err := l.store.Transaction(ctx, func(q store.Queries) error {
		if _, err := q.GetAccount(ctx, n.AccountID); err != nil {
			return err
		}

		if dedup {
			existing, err := q.FindMovement(ctx, n)
			if err == nil {
				m = existing
				return nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return persistence("find movement", err)
			}
		}

		m = model.Movement{
			AccountID:   n.AccountID,
			CategoryID:  n.CategoryID,
			Description: n.Description,
			Amount:      n.Amount,
			Date:        n.Date,
		}
		if err := q.InsertMovement(ctx, &m); err != nil {
			return persistence("insert movement", err)
		}
		created = true
		return l.ApplyCreate(ctx, q, &m)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Movement{}, false, err
		}
		return model.Movement{}, false, persistence("create movement", err)
	}
	return m, created, nil
}

// ApplyCreate adds a freshly inserted movement's amount to its account's
// current balance and stamps the movement with the resulting balance. q must
// be the transaction the movement was inserted in.
func (l *Ledger) ApplyCreate(ctx context.Context, q store.Queries, m *model.Movement) error {
	acct, err := q.GetAccount(ctx, m.AccountID)
	if err != nil {
		return persistence("load account", err)
	}

	balance := model.Currency(acct.CurrentBalance.Add(m.Amount))
	if err := q.UpdateAccountBalance(ctx, acct.ID, balance); err != nil {
		return persistence("update account balance", err)
	}
	if err := q.UpdateMovementBalance(ctx, m.ID, balance); err != nil {
		return persistence("stamp movement balance", err)
	}
	m.Balance = decimal.NewNullDecimal(balance)

	logger.FromContext(ctx).Debug().
		Int64("account_id", acct.ID).
		Int64("movement_id", m.ID).
		Str("amount", m.Amount.StringFixed(2)).
		Str("balance", balance.StringFixed(2)).
		Msg("balance updated")
	return nil
}

// ApplyDelete always refuses: every later movement's balance snapshot depends
// on the ones before it, so removing one would leave them wrong.
func (l *Ledger) ApplyDelete(_ context.Context, m model.Movement) error {
	return &InvalidOperationError{
		Op:     fmt.Sprintf("delete movement %d", m.ID),
		Reason: "movements cannot be deleted once their balance has been applied",
	}
}

// DeleteMovement looks the movement up and rejects its deletion.
func (l *Ledger) DeleteMovement(ctx context.Context, id int64) error {
	m, err := l.store.Queries().GetMovement(ctx, id)
	if err != nil {
		return err
	}
	err = l.ApplyDelete(ctx, m)
	logger.FromContext(ctx).Warn().Int64("movement_id", id).Err(err).Msg("movement deletion rejected")
	return err
}

// SetCategory reassigns (or clears, with nil) a movement's category. Balances
// are not involved.
func (l *Ledger) SetCategory(ctx context.Context, movementID int64, categoryID *int64) error {
	q := l.store.Queries()
	if categoryID != nil {
		if _, err := q.GetCategory(ctx, *categoryID); err != nil {
			return err
		}
	}
	return q.UpdateMovementCategory(ctx, movementID, categoryID)
}
