package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/casterly-dev/casterly/internal/model"
)

// Queries is the set of persistence operations available both on the
// connection pool and inside a transaction.
type Queries interface {
	InsertAccount(ctx context.Context, a *model.Account) error
	GetAccount(ctx context.Context, id int64) (model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error

	InsertMovement(ctx context.Context, m *model.Movement) error
	GetMovement(ctx context.Context, id int64) (model.Movement, error)
	FindMovement(ctx context.Context, key model.NewMovement) (model.Movement, error)
	UpdateMovementBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	UpdateMovementCategory(ctx context.Context, id int64, categoryID *int64) error
	ListMovements(ctx context.Context, f MovementFilter) ([]model.Movement, error)

	InsertCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error

	InsertRule(ctx context.Context, r *model.SuggestionRule) error
	ListRules(ctx context.Context) ([]model.SuggestionRule, error)

	InsertImportRun(ctx context.Context, r *ImportRun) error
	ListImportRuns(ctx context.Context, accountID int64) ([]ImportRun, error)
}

// MovementFilter narrows ListMovements. Zero values mean "no bound".
// From and To are inclusive civil dates.
type MovementFilter struct {
	AccountID     int64
	CategoryID    *int64
	Uncategorized bool
	From          time.Time
	To            time.Time
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func amountText(d decimal.Decimal) string {
	return model.Currency(d).StringFixed(model.CurrencyPlaces)
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
