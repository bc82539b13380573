package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/casterly-dev/casterly/internal/model"
)

// InsertCategory stores c and sets its ID.
func (s *queries) InsertCategory(ctx context.Context, c *model.Category) error {
	res, err := s.q.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, c.Name)
	if err != nil {
		return errors.Wrap(err, "inserting category")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading category id")
	}
	c.ID = id
	return nil
}

// GetCategory returns the category with the given ID.
func (s *queries) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := s.q.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, errors.Wrapf(ErrNotFound, "category %d", id)
	}
	if err != nil {
		return model.Category{}, errors.Wrapf(err, "reading category %d", id)
	}
	return c, nil
}

// ListCategories returns all categories ordered by ID.
func (s *queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, errors.Wrap(err, "scanning category")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "listing categories")
}

// RenameCategory changes the name of a category.
func (s *queries) RenameCategory(ctx context.Context, id int64, name string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return errors.Wrapf(err, "renaming category %d", id)
	}
	if err := expectOneRow(res); err != nil {
		return errors.Wrapf(err, "renaming category %d", id)
	}
	return nil
}

// DeleteCategory removes a category. Movements pointing at it become
// uncategorized and the suggestion rules targeting it are removed.
func (s *queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting category %d", id)
	}
	if err := expectOneRow(res); err != nil {
		return errors.Wrapf(err, "deleting category %d", id)
	}
	return nil
}

// InsertRule stores r and sets its ID.
func (s *queries) InsertRule(ctx context.Context, r *model.SuggestionRule) error {
	res, err := s.q.ExecContext(ctx, `INSERT INTO suggestion_rules (expression, category_id) VALUES (?, ?)`,
		r.Expression, r.CategoryID)
	if err != nil {
		return errors.Wrap(err, "inserting suggestion rule")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading suggestion rule id")
	}
	r.ID = id
	return nil
}

// ListRules returns all suggestion rules in insertion order.
func (s *queries) ListRules(ctx context.Context) ([]model.SuggestionRule, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, expression, category_id FROM suggestion_rules ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing suggestion rules")
	}
	defer rows.Close()

	var out []model.SuggestionRule
	for rows.Next() {
		var r model.SuggestionRule
		if err := rows.Scan(&r.ID, &r.Expression, &r.CategoryID); err != nil {
			return nil, errors.Wrap(err, "scanning suggestion rule")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "listing suggestion rules")
}
