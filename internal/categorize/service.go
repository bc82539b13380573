package categorize

import (
	"context"
	"fmt"

	"github.com/casterly-dev/casterly/internal/ledger"
	"github.com/casterly-dev/casterly/internal/logger"
	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/store"
)

// Service manages suggestion rules and applies them to stored movements.
type Service struct {
	ledger  *ledger.Ledger
	queries store.Queries
}

// NewService creates a Service.
func NewService(l *ledger.Ledger, q store.Queries) *Service {
	return &Service{ledger: l, queries: q}
}

// AddRule validates expression and stores a rule for categoryID.
func (s *Service) AddRule(ctx context.Context, expression string, categoryID int64) (model.SuggestionRule, error) {
	if _, err := Compile(expression); err != nil {
		return model.SuggestionRule{}, err
	}
	if _, err := s.queries.GetCategory(ctx, categoryID); err != nil {
		return model.SuggestionRule{}, err
	}
	r := model.SuggestionRule{Expression: expression, CategoryID: categoryID}
	if err := s.queries.InsertRule(ctx, &r); err != nil {
		return model.SuggestionRule{}, err
	}
	return r, nil
}

// Engine builds an Engine from the stored rules.
func (s *Service) Engine(ctx context.Context) (*Engine, error) {
	rules, err := s.queries.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return New(rules, cats)
}

// Suggest returns the suggested category for description, if any.
func (s *Service) Suggest(ctx context.Context, description string) (*model.Category, bool, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, false, err
	}
	c, ok := e.Suggest(description)
	return c, ok, nil
}

// ApplyResult counts the outcome of Apply.
type ApplyResult struct {
	Categorized int
	Unmatched   int
}

// Apply assigns suggested categories to the uncategorized movements of an
// account. Movements that already have a category are left alone.
func (s *Service) Apply(ctx context.Context, accountID int64) (ApplyResult, error) {
	e, err := s.Engine(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	movements, err := s.queries.ListMovements(ctx, store.MovementFilter{AccountID: accountID, Uncategorized: true})
	if err != nil {
		return ApplyResult{}, err
	}

	var res ApplyResult
	for _, m := range movements {
		c, ok := e.Suggest(m.Description)
		if !ok {
			res.Unmatched++
			continue
		}
		if err := s.ledger.SetCategory(ctx, m.ID, &c.ID); err != nil {
			return res, fmt.Errorf("categorizing movement %d: %w", m.ID, err)
		}
		res.Categorized++
	}

	logger.FromContext(ctx).Info().
		Int64("account_id", accountID).
		Int("categorized", res.Categorized).
		Int("unmatched", res.Unmatched).
		Msg("suggestions applied")
	return res, nil
}
