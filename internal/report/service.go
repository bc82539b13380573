package report

import (
	"context"
	"time"

	"github.com/casterly-dev/casterly/internal/store"
)

// Report is the movements of a period with their totals.
type Report struct {
	Summary    Summary
	Movements  Movements
	Categories []CategoryTotal
}

// Service builds reports from stored movements. It only reads.
type Service struct {
	queries store.Queries
}

// NewService creates a Service.
func NewService(q store.Queries) *Service {
	return &Service{queries: q}
}

// Range reports the movements of an account dated within [from, to].
// A zero accountID covers every account.
func (s *Service) Range(ctx context.Context, accountID int64, from, to time.Time) (Report, error) {
	list, err := s.queries.ListMovements(ctx, store.MovementFilter{AccountID: accountID, From: from, To: to})
	if err != nil {
		return Report{}, err
	}
	ms := Movements(list)
	return Report{
		Summary:    ms.Summarize(from, to),
		Movements:  ms,
		Categories: ms.ByCategory(),
	}, nil
}

// Month reports a calendar month.
func (s *Service) Month(ctx context.Context, accountID int64, year, month int) (Report, error) {
	from, to, err := MonthRange(year, month)
	if err != nil {
		return Report{}, err
	}
	return s.Range(ctx, accountID, from, to)
}

// Week reports an ISO week.
func (s *Service) Week(ctx context.Context, accountID int64, year, week int) (Report, error) {
	from, to, err := WeekRange(year, week)
	if err != nil {
		return Report{}, err
	}
	return s.Range(ctx, accountID, from, to)
}
