// Package categorize suggests categories for movement descriptions.
package categorize

import (
	"fmt"
	"regexp"

	"github.com/casterly-dev/casterly/internal/model"
)

type compiledRule struct {
	rule model.SuggestionRule
	re   *regexp.Regexp
}

// Engine matches descriptions against an ordered list of rules.
type Engine struct {
	rules      []compiledRule
	categories map[int64]model.Category
}

// New compiles rules in the order given. Every rule must target one of
// categories.
func New(rules []model.SuggestionRule, categories []model.Category) (*Engine, error) {
	e := &Engine{categories: make(map[int64]model.Category, len(categories))}
	for _, c := range categories {
		e.categories[c.ID] = c
	}
	for _, r := range rules {
		re, err := Compile(r.Expression)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", r.ID, err)
		}
		if _, ok := e.categories[r.CategoryID]; !ok {
			return nil, fmt.Errorf("rule %d: unknown category %d", r.ID, r.CategoryID)
		}
		e.rules = append(e.rules, compiledRule{rule: r, re: re})
	}
	return e, nil
}

// Compile checks a rule expression.
func Compile(expression string) (*regexp.Regexp, error) {
	if expression == "" {
		return nil, fmt.Errorf("empty expression")
	}
	re, err := regexp.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", expression, err)
	}
	return re, nil
}

// Suggest returns the category of the first rule whose expression matches
// anywhere in description.
func (e *Engine) Suggest(description string) (*model.Category, bool) {
	for _, r := range e.rules {
		if r.re.MatchString(description) {
			c := e.categories[r.rule.CategoryID]
			return &c, true
		}
	}
	return nil, false
}

// Len returns the number of rules.
func (e *Engine) Len() int { return len(e.rules) }
