// Package importer turns parsed statements into ledger movements.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/casterly-dev/casterly/internal/ledger"
	"github.com/casterly-dev/casterly/internal/logger"
	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/statement"
	"github.com/casterly-dev/casterly/internal/store"
)

// Result is the outcome of importing a batch of records.
type Result struct {
	Accepted int
	Rejected []statement.Record
}

// Importer creates movements from statement records, skipping records that
// already exist for the account.
type Importer struct {
	ledger  *ledger.Ledger
	queries store.Queries
}

// New creates an Importer. q is used for account lookups and import history.
func New(l *ledger.Ledger, q store.Queries) *Importer {
	return &Importer{ledger: l, queries: q}
}

// Import creates one movement per record, in order. Records matching an
// existing movement are returned in Result.Rejected. Every record is validated
// before the first insert, so an invalid record imports nothing. Past that
// point each record is committed on its own: if storing one fails, the ones
// before it stay imported.
func (im *Importer) Import(ctx context.Context, records []statement.Record, accountID int64) (Result, error) {
	batch := make([]model.NewMovement, len(records))
	for i, r := range records {
		batch[i] = model.NewMovement{
			AccountID:   accountID,
			Description: truncate(r.Description, model.MaxDescriptionLen),
			Amount:      r.Amount,
			Date:        r.Date,
		}
		check := batch[i]
		if err := check.Validate(); err != nil {
			return Result{}, fmt.Errorf("record %d (%s): %w", i+1, r.Description, err)
		}
	}

	var res Result
	for i, n := range batch {
		_, created, err := im.ledger.GetOrCreateMovement(ctx, n)
		if err != nil {
			return res, fmt.Errorf("importing record %d (%s): %w", i+1, records[i].Description, err)
		}
		if created {
			res.Accepted++
		} else {
			res.Rejected = append(res.Rejected, records[i])
		}
	}
	return res, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// FileParams describes a statement file to import.
type FileParams struct {
	Reader    io.Reader
	FileName  string
	AccountID int64
	// Entity selects the row parser. Empty means the account's own entity.
	Entity  model.Entity
	Options statement.Options
}

// ImportFile parses a statement file, imports its records and records the
// run. A file with any unparseable row imports nothing.
func (im *Importer) ImportFile(ctx context.Context, p FileParams) (store.ImportRun, Result, error) {
	acct, err := im.queries.GetAccount(ctx, p.AccountID)
	if err != nil {
		return store.ImportRun{}, Result{}, err
	}
	entity := p.Entity
	if entity == "" {
		entity = acct.Entity
	}

	records, err := statement.ParseEntity(p.Reader, entity, p.Options)
	if err != nil {
		return store.ImportRun{}, Result{}, fmt.Errorf("parsing %s: %w", p.FileName, err)
	}

	res, err := im.Import(ctx, records, acct.ID)
	if err != nil {
		return store.ImportRun{}, res, err
	}

	run := store.ImportRun{
		ID:         uuid.New(),
		AccountID:  acct.ID,
		Entity:     entity,
		FileName:   p.FileName,
		Accepted:   res.Accepted,
		Rejected:   len(res.Rejected),
		ImportedAt: time.Now().UTC(),
	}
	if err := im.queries.InsertImportRun(ctx, &run); err != nil {
		return store.ImportRun{}, res, fmt.Errorf("recording import run: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("run_id", run.ID.String()).
		Int64("account_id", acct.ID).
		Str("file", p.FileName).
		Int("accepted", run.Accepted).
		Int("rejected", run.Rejected).
		Msg("statement imported")
	return run, res, nil
}
