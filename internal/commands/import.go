package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casterly-dev/casterly/internal/config"
	"github.com/casterly-dev/casterly/internal/importer"
	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/statement"
)

func newImportCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements",
	}
	cmd.AddCommand(
		newImportFileCommand(env),
		newImportScanCommand(env),
		newImportHistoryCommand(env),
	)
	return cmd
}

func newImportFileCommand(env *environment) *cobra.Command {
	var (
		accountID   int64
		entity      string
		headerLines int
		reverse     bool
		showRejects bool
	)

	cmd := &cobra.Command{
		Use:   "file <statement.csv>",
		Short: "Import one statement file into an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var e model.Entity
			if entity != "" {
				if e, err = model.ParseEntity(entity); err != nil {
					return err
				}
			}
			opts := statement.Options{HeaderLines: a.cfg.Import.HeaderLines, ReverseOrder: a.cfg.Import.ReverseOrder}
			if cmd.Flags().Changed("header-lines") {
				opts.HeaderLines = headerLines
			}
			if cmd.Flags().Changed("reverse") {
				opts.ReverseOrder = reverse
			}

			fh, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer fh.Close()

			run, res, err := a.importer.ImportFile(a.ctx, importer.FileParams{
				Reader:    fh,
				FileName:  filepath.Base(args[0]),
				AccountID: accountID,
				Entity:    e,
				Options:   opts,
			})
			if err != nil {
				if res.Accepted > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d rows were imported before the failure\n", res.Accepted)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s: %d accepted, %d rejected (run %s)\n",
				run.FileName, run.Accepted, run.Rejected, run.ID)
			if showRejects {
				for _, r := range res.Rejected {
					fmt.Fprintf(out, "  rejected %s %s %s\n",
						r.Date.Format(model.DateFormat), r.Description, r.Amount.StringFixed(2))
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account id (required)")
	cmd.Flags().StringVar(&entity, "entity", "", "statement format (default: the account's entity)")
	cmd.Flags().IntVar(&headerLines, "header-lines", 1, "header lines to skip (default: from config)")
	cmd.Flags().BoolVar(&reverse, "reverse", true, "file is newest first (default: from config)")
	cmd.Flags().BoolVar(&showRejects, "show-rejected", false, "list rows that were already imported")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newImportScanCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Import every statement in import/ that matches a configured feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			feeds, err := importFeeds(a.cfg)
			if err != nil {
				return err
			}
			results, err := a.importer.ImportDir(a.ctx, a.root, feeds)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No statements to import")
				return nil
			}
			failed := 0
			for _, r := range results {
				switch {
				case r.Skipped:
					fmt.Fprintf(out, "%s: skipped, no matching feed\n", r.File.Name)
				case r.Err != nil:
					failed++
					fmt.Fprintf(out, "%s: failed: %v\n", r.File.Name, r.Err)
				default:
					fmt.Fprintf(out, "%s: %d accepted, %d rejected (feed %s)\n",
						r.File.Name, r.Run.Accepted, r.Run.Rejected, r.Feed)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d statements failed to import", failed)
			}
			return nil
		},
	}
}

func importFeeds(cfg *config.Config) ([]importer.Feed, error) {
	feeds := make([]importer.Feed, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		e, err := model.ParseEntity(f.Entity)
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", f.Name, err)
		}
		headerLines, reverse := f.Options(cfg.Import)
		feeds = append(feeds, importer.Feed{
			Name:      f.Name,
			Entity:    e,
			AccountID: f.AccountID,
			Options:   statement.Options{HeaderLines: headerLines, ReverseOrder: reverse},
		})
	}
	return feeds, nil
}

func newImportHistoryCommand(env *environment) *cobra.Command {
	var accountID int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.queries().ListImportRuns(a.ctx, accountID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tWHEN\tACCOUNT\tENTITY\tFILE\tACCEPTED\tREJECTED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%d\n",
					r.ID, r.ImportedAt.Format("2006-01-02 15:04"), r.AccountID, r.Entity, r.FileName, r.Accepted, r.Rejected)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id (default: all)")
	return cmd
}
