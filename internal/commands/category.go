package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casterly-dev/casterly/internal/categorize"
	"github.com/casterly-dev/casterly/internal/model"
)

func newCategoryCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := strings.TrimSpace(args[0])
				if name == "" {
					return fmt.Errorf("category name must not be empty")
				}
				a, err := env.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				c := model.Category{Name: name}
				if err := a.queries().InsertCategory(a.ctx, &c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created category %d: %s\n", c.ID, c.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := env.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				cats, err := a.queries().ListCategories(a.ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME")
				for _, c := range cats {
					fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a category",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "category")
				if err != nil {
					return err
				}
				a, err := env.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				return a.queries().RenameCategory(a.ctx, id, strings.TrimSpace(args[1]))
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a category; its movements become uncategorized",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "category")
				if err != nil {
					return err
				}
				a, err := env.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				if err := a.queries().DeleteCategory(a.ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d\n", id)
				return nil
			},
		},
	)
	return cmd
}

func newRuleCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage category suggestion rules",
	}

	var categoryID int64
	add := &cobra.Command{
		Use:   "add <expression>",
		Short: "Add a rule: descriptions matching the regular expression suggest the category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.categorize.AddRule(a.ctx, args[0], categoryID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %d: %s\n", r.ID, r.Expression)
			return nil
		},
	}
	add.Flags().Int64Var(&categoryID, "category", 0, "category id (required)")
	_ = add.MarkFlagRequired("category")

	list := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rules, err := a.queries().ListRules(a.ctx)
			if err != nil {
				return err
			}
			names, err := a.categoryNames()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEXPRESSION\tCATEGORY")
			for _, r := range rules {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Expression, names[r.CategoryID])
			}
			return tw.Flush()
		},
	}

	load := &cobra.Command{
		Use:   "load [file]",
		Short: "Load rules from a YAML file (default rules/suggestion-rules.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			path := filepath.Join(a.root, rulesFile)
			if len(args) > 0 {
				path = args[0]
			}
			f, err := categorize.ReadRulesFile(path)
			if err != nil {
				return err
			}
			n, err := a.categorize.LoadRules(a.ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d new rules from %s\n", n, path)
			return nil
		},
	}

	cmd.AddCommand(add, list, load)
	return cmd
}

func newSuggestCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest a category for a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, ok, err := a.categorize.Suggest(a.ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no suggestion")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.ID, c.Name)
			return nil
		},
	}
}

func newCategorizeCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Apply suggestion rules to stored movements",
	}

	var accountID int64
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Categorize uncategorized movements of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.categorize.Apply(a.ctx, accountID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categorized %d movements, %d without a suggestion\n", res.Categorized, res.Unmatched)
			return nil
		},
	}
	apply.Flags().Int64Var(&accountID, "account", 0, "account id (required)")
	_ = apply.MarkFlagRequired("account")

	cmd.AddCommand(apply)
	return cmd
}
