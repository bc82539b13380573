package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/casterly-dev/casterly/internal/model"
)

// ImportRun records the outcome of importing one statement file.
type ImportRun struct {
	ID         uuid.UUID
	AccountID  int64
	Entity     model.Entity
	FileName   string
	Accepted   int
	Rejected   int
	ImportedAt time.Time
}

// InsertImportRun stores r. A zero ID is replaced with a fresh UUID.
func (s *queries) InsertImportRun(ctx context.Context, r *ImportRun) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ImportedAt.IsZero() {
		r.ImportedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO import_runs (id, account_id, entity, file_name, accepted, rejected, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.AccountID, string(r.Entity), r.FileName, r.Accepted, r.Rejected, r.ImportedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "inserting import run")
	}
	return nil
}

// ListImportRuns returns the import runs of an account, oldest first.
// A zero accountID lists runs of every account.
func (s *queries) ListImportRuns(ctx context.Context, accountID int64) ([]ImportRun, error) {
	query := `SELECT id, account_id, entity, file_name, accepted, rejected, imported_at FROM import_runs`
	var args []any
	if accountID != 0 {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY imported_at, rowid`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing import runs")
	}
	defer rows.Close()

	var out []ImportRun
	for rows.Next() {
		var (
			r      ImportRun
			id     string
			entity string
		)
		if err := rows.Scan(&id, &r.AccountID, &entity, &r.FileName, &r.Accepted, &r.Rejected, &r.ImportedAt); err != nil {
			return nil, errors.Wrap(err, "scanning import run")
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "import run id %q", id)
		}
		r.Entity = model.Entity(entity)
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "listing import runs")
}
