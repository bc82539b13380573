package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/casterly-dev/casterly/internal/model"
)

const movementColumns = `id, account_id, category_id, description, amount, balance, date`

// InsertMovement stores m without a balance snapshot and sets its ID.
func (s *queries) InsertMovement(ctx context.Context, m *model.Movement) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO movements (account_id, category_id, description, amount, balance, date)
		VALUES (?, ?, ?, ?, NULL, ?)`,
		m.AccountID, nullableID(m.CategoryID), m.Description, amountText(m.Amount), m.Date.Format(model.DateFormat),
	)
	if err != nil {
		return errors.Wrap(err, "inserting movement")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading movement id")
	}
	m.ID = id
	m.Balance = decimal.NullDecimal{}
	return nil
}

// GetMovement returns the movement with the given ID.
func (s *queries) GetMovement(ctx context.Context, id int64) (model.Movement, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = ?`, id)
	m, err := scanMovement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movement{}, errors.Wrapf(ErrNotFound, "movement %d", id)
	}
	if err != nil {
		return model.Movement{}, errors.Wrapf(err, "reading movement %d", id)
	}
	return m, nil
}

// FindMovement looks a movement up by its dedup key: account, description,
// amount, date and category (a nil category only matches uncategorized rows).
func (s *queries) FindMovement(ctx context.Context, key model.NewMovement) (model.Movement, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+movementColumns+` FROM movements
		WHERE account_id = ? AND description = ? AND amount = ? AND date = ? AND category_id IS ?
		ORDER BY id LIMIT 1`,
		key.AccountID, key.Description, amountText(key.Amount), key.Date.Format(model.DateFormat), nullableID(key.CategoryID),
	)
	m, err := scanMovement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movement{}, errors.WithStack(ErrNotFound)
	}
	if err != nil {
		return model.Movement{}, errors.Wrap(err, "finding movement")
	}
	return m, nil
}

// UpdateMovementBalance stamps the balance snapshot of a movement.
func (s *queries) UpdateMovementBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, `UPDATE movements SET balance = ? WHERE id = ?`, amountText(balance), id)
	if err != nil {
		return errors.Wrapf(err, "stamping balance of movement %d", id)
	}
	if err := expectOneRow(res); err != nil {
		return errors.Wrapf(err, "stamping balance of movement %d", id)
	}
	return nil
}

// UpdateMovementCategory sets or clears the category of a movement.
func (s *queries) UpdateMovementCategory(ctx context.Context, id int64, categoryID *int64) error {
	res, err := s.q.ExecContext(ctx, `UPDATE movements SET category_id = ? WHERE id = ?`, nullableID(categoryID), id)
	if err != nil {
		return errors.Wrapf(err, "updating category of movement %d", id)
	}
	if err := expectOneRow(res); err != nil {
		return errors.Wrapf(err, "updating category of movement %d", id)
	}
	return nil
}

// ListMovements returns the movements matching f ordered by date, then ID.
func (s *queries) ListMovements(ctx context.Context, f MovementFilter) ([]model.Movement, error) {
	var (
		where []string
		args  []any
	)
	if f.AccountID != 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Uncategorized {
		where = append(where, "category_id IS NULL")
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.Format(model.DateFormat))
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To.Format(model.DateFormat))
	}

	query := `SELECT ` + movementColumns + ` FROM movements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, id"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing movements")
	}
	defer rows.Close()

	var out []model.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning movement")
		}
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "listing movements")
}

func scanMovement(r rowScanner) (model.Movement, error) {
	var (
		m        model.Movement
		category sql.NullInt64
		amount   string
		balance  sql.NullString
		date     string
	)
	if err := r.Scan(&m.ID, &m.AccountID, &category, &m.Description, &amount, &balance, &date); err != nil {
		return model.Movement{}, err
	}
	m.CategoryID = idPtr(category)

	var err error
	if m.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Movement{}, errors.Wrapf(err, "movement %d amount", m.ID)
	}
	if balance.Valid {
		b, err := decimal.NewFromString(balance.String)
		if err != nil {
			return model.Movement{}, errors.Wrapf(err, "movement %d balance", m.ID)
		}
		m.Balance = decimal.NewNullDecimal(b)
	}
	if m.Date, err = time.Parse(model.DateFormat, date); err != nil {
		return model.Movement{}, errors.Wrapf(err, "movement %d date", m.ID)
	}
	return m, nil
}
