package categorize

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/casterly-dev/casterly/internal/model"
)

// RulesFile is the YAML layout of rules/suggestion-rules.yaml.
type RulesFile struct {
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry names its category rather than referencing it by ID.
type RuleEntry struct {
	Expression string `yaml:"expression"`
	Category   string `yaml:"category"`
}

// DefaultCategories returns the starter category list for a new project.
func DefaultCategories() []string {
	return []string{
		"Groceries",
		"Eating out",
		"Rent",
		"Bills",
		"Transport",
		"Clothes",
		"Travel",
		"Leisure",
		"Health",
		"Salary",
		"Other income",
	}
}

// ReadRulesFile loads a rules file from disk.
func ReadRulesFile(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	for i, r := range f.Rules {
		if _, err := Compile(r.Expression); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d: missing category", i+1)
		}
	}
	return &f, nil
}

// WriteRulesFile writes f as YAML.
func WriteRulesFile(path string, f *RulesFile) error {
	if f.Rules == nil {
		f.Rules = []RuleEntry{}
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// SeedCategories creates the named categories that do not exist yet, matching
// names case-insensitively. It returns the number created.
func (s *Service) SeedCategories(ctx context.Context, names []string) (int, error) {
	byName, err := s.categoriesByName(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, name := range names {
		if _, ok := byName[strings.ToLower(name)]; ok {
			continue
		}
		c := model.Category{Name: name}
		if err := s.queries.InsertCategory(ctx, &c); err != nil {
			return created, err
		}
		byName[strings.ToLower(name)] = c
		created++
	}
	return created, nil
}

// LoadRules stores the rules of f that are not stored yet, creating their
// categories when missing. It returns the number of rules added.
func (s *Service) LoadRules(ctx context.Context, f *RulesFile) (int, error) {
	names := make([]string, 0, len(f.Rules))
	for _, r := range f.Rules {
		names = append(names, r.Category)
	}
	if _, err := s.SeedCategories(ctx, names); err != nil {
		return 0, err
	}
	byName, err := s.categoriesByName(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := s.queries.ListRules(ctx)
	if err != nil {
		return 0, err
	}
	type key struct {
		expr string
		cat  int64
	}
	seen := make(map[key]bool, len(existing))
	for _, r := range existing {
		seen[key{r.Expression, r.CategoryID}] = true
	}

	added := 0
	for _, r := range f.Rules {
		c := byName[strings.ToLower(r.Category)]
		if seen[key{r.Expression, c.ID}] {
			continue
		}
		if _, err := s.AddRule(ctx, r.Expression, c.ID); err != nil {
			return added, err
		}
		seen[key{r.Expression, c.ID}] = true
		added++
	}
	return added, nil
}

func (s *Service) categoriesByName(ctx context.Context) (map[string]model.Category, error) {
	cats, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		key := strings.ToLower(c.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = c
		}
	}
	return byName, nil
}
