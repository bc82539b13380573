package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/casterly-dev/casterly/internal/categorize"
	"github.com/casterly-dev/casterly/internal/config"
	"github.com/casterly-dev/casterly/internal/gitops"
	"github.com/casterly-dev/casterly/internal/logger"
	"github.com/casterly-dev/casterly/internal/store"
)

// rulesFile is where init writes the suggestion rules seed.
var rulesFile = filepath.Join("rules", "suggestion-rules.yaml")

func newInitCommand(env *environment) *cobra.Command {
	var (
		owner  string
		useGit bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new casterly project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := env.v.GetString("dir")
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, owner, useGit)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "account owner name (required)")
	_ = cmd.MarkFlagRequired("owner")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit the project files")

	return cmd
}

func runInit(cmd *cobra.Command, dir, owner string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if fileExists(cfgPath) {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	// Create directory structure.
	dirs := []string{
		"rules",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(owner)
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := categorize.WriteRulesFile(filepath.Join(dir, rulesFile), &categorize.RulesFile{}); err != nil {
		return err
	}

	gitignore := "casterly.db*\n.env\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Create the database and the starter categories.
	ctx := cmd.Context()
	db, err := store.Open(ctx, cfg.DatabasePath(dir))
	if err != nil {
		return err
	}
	defer db.Close()

	svc := categorize.NewService(nil, db.Queries())
	n, err := svc.SeedCategories(ctx, categorize.DefaultCategories())
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	logger.FromContext(ctx).Debug().Int("categories", n).Msg("categories seeded")

	if !useGit {
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized casterly project at %s\n", dir)
		return nil
	}

	// Initialize git and commit the project files; the database is ignored.
	if err := gitops.Init(ctx, dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(ctx, dir, "init: casterly project for "+owner, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized casterly project at %s (%s)\n", dir, hash)
	return nil
}
