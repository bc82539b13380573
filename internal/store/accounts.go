package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/casterly-dev/casterly/internal/model"
)

const accountColumns = `id, owner, description, last_digits, entity, initial_balance, current_balance`

// InsertAccount stores a and sets its ID.
func (s *queries) InsertAccount(ctx context.Context, a *model.Account) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO accounts (owner, description, last_digits, entity, initial_balance, current_balance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Owner, a.Description, a.LastDigits, string(a.Entity),
		amountText(a.InitialBalance), amountText(a.CurrentBalance),
	)
	if err != nil {
		return errors.Wrap(err, "inserting account")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading account id")
	}
	a.ID = id
	return nil
}

// GetAccount returns the account with the given ID.
func (s *queries) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, errors.Wrapf(ErrNotFound, "account %d", id)
	}
	if err != nil {
		return model.Account{}, errors.Wrapf(err, "reading account %d", id)
	}
	return a, nil
}

// ListAccounts returns all accounts ordered by ID.
func (s *queries) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing accounts")
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning account")
		}
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "listing accounts")
}

// UpdateAccountBalance overwrites the current balance of an account.
func (s *queries) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, `UPDATE accounts SET current_balance = ? WHERE id = ?`, amountText(balance), id)
	if err != nil {
		return errors.Wrapf(err, "updating balance of account %d", id)
	}
	if err := expectOneRow(res); err != nil {
		return errors.Wrapf(err, "updating balance of account %d", id)
	}
	return nil
}

func scanAccount(r rowScanner) (model.Account, error) {
	var (
		a                model.Account
		entity           string
		initial, current string
	)
	if err := r.Scan(&a.ID, &a.Owner, &a.Description, &a.LastDigits, &entity, &initial, &current); err != nil {
		return model.Account{}, err
	}
	a.Entity = model.Entity(entity)

	var err error
	if a.InitialBalance, err = decimal.NewFromString(initial); err != nil {
		return model.Account{}, errors.Wrapf(err, "account %d initial balance", a.ID)
	}
	if a.CurrentBalance, err = decimal.NewFromString(current); err != nil {
		return model.Account{}, errors.Wrapf(err, "account %d current balance", a.ID)
	}
	return a, nil
}
