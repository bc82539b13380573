package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/report"
)

type reportFlags struct {
	accountID  int64
	byCategory bool
	list       bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.accountID, "account", 0, "account id (default: all)")
	cmd.Flags().BoolVar(&f.byCategory, "by-category", false, "break totals down by category")
	cmd.Flags().BoolVar(&f.list, "list", false, "list the movements")
}

func newReportCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Expenses, earnings and balance over a period",
	}

	var monthFlags reportFlags
	month := &cobra.Command{
		Use:   "month <year> <month>",
		Short: "Report a calendar month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseInt(args[0], "year")
			if err != nil {
				return err
			}
			m, err := parseInt(args[1], "month")
			if err != nil {
				return err
			}
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.report.Month(a.ctx, monthFlags.accountID, year, m)
			if err != nil {
				return err
			}
			return writeReport(cmd, a, r, monthFlags)
		},
	}
	monthFlags.register(month)

	var weekFlags reportFlags
	week := &cobra.Command{
		Use:   "week <year> <week>",
		Short: "Report an ISO week (Monday to Sunday)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseInt(args[0], "year")
			if err != nil {
				return err
			}
			w, err := parseInt(args[1], "week")
			if err != nil {
				return err
			}
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.report.Week(a.ctx, weekFlags.accountID, year, w)
			if err != nil {
				return err
			}
			return writeReport(cmd, a, r, weekFlags)
		},
	}
	weekFlags.register(week)

	cmd.AddCommand(month, week)
	return cmd
}

func writeReport(cmd *cobra.Command, a *app, r report.Report, f reportFlags) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s to %s\n", r.Summary.From.Format(model.DateFormat), r.Summary.To.Format(model.DateFormat))
	writeTotals(cmd, r.Summary)

	if !f.byCategory && !f.list {
		return nil
	}
	names, err := a.categoryNames()
	if err != nil {
		return err
	}

	if f.byCategory {
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tMOVEMENTS\tEXPENSES\tEARNINGS\tBALANCE")
		for _, c := range r.Categories {
			name := "(none)"
			if c.CategoryID != nil {
				name = names[*c.CategoryID]
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", name, c.Movements,
				c.Expenses.StringFixed(2), c.Earnings.StringFixed(2), c.Balance.StringFixed(2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if f.list {
		fmt.Fprintln(out)
		return writeMovements(cmd, r.Movements, names)
	}
	return nil
}
