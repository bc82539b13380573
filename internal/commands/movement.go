package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/report"
	"github.com/casterly-dev/casterly/internal/store"
)

func newMovementCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movement",
		Short: "Record and list movements",
	}
	cmd.AddCommand(
		newMovementAddCommand(env),
		newMovementDeleteCommand(env),
		newMovementListCommand(env),
		newMovementCategorizeCommand(env),
	)
	return cmd
}

func newMovementAddCommand(env *environment) *cobra.Command {
	var (
		accountID   int64
		description string
		amount      string
		date        string
		categoryID  int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a movement and update the account balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := model.ParseCurrency(amount)
			if err != nil {
				return err
			}
			d := model.CivilDate(time.Now())
			if date != "" {
				if d, err = parseDate(date); err != nil {
					return err
				}
			}

			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n := model.NewMovement{AccountID: accountID, Description: description, Amount: amt, Date: d}
			if categoryID != 0 {
				n.CategoryID = &categoryID
			}
			m, err := a.ledger.CreateMovement(a.ctx, n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded movement %d: %s (balance %s)\n",
				m.ID, m, m.Balance.Decimal.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account id (required)")
	cmd.Flags().StringVar(&description, "description", "", "description (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "signed amount, negative for expenses (required)")
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default: today)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newMovementDeleteCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a movement (always refused)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "movement")
			if err != nil {
				return err
			}
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.ledger.DeleteMovement(a.ctx, id)
		},
	}
}

func newMovementListCommand(env *environment) *cobra.Command {
	var (
		filter        store.MovementFilter
		from, to      string
		categoryID    int64
		asCSV         bool
		showTotals    bool
		uncategorized bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movements by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if filter.From, err = parseDate(from); err != nil {
				return err
			}
			if filter.To, err = parseDate(to); err != nil {
				return err
			}
			if categoryID != 0 {
				filter.CategoryID = &categoryID
			}
			filter.Uncategorized = uncategorized

			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.queries().ListMovements(a.ctx, filter)
			if err != nil {
				return err
			}
			names, err := a.categoryNames()
			if err != nil {
				return err
			}

			ms := report.Movements(list)
			if asCSV {
				return report.WriteCSV(cmd.OutOrStdout(), ms, names)
			}
			if err := writeMovements(cmd, ms, names); err != nil {
				return err
			}
			if showTotals {
				writeTotals(cmd, ms.Summarize(filter.From, filter.To))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&filter.AccountID, "account", 0, "account id (default: all)")
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "only this category id")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "only movements without a category")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV")
	cmd.Flags().BoolVar(&showTotals, "totals", false, "print expenses, earnings and balance")
	cmd.MarkFlagsMutuallyExclusive("category", "uncategorized")

	return cmd
}

func newMovementCategorizeCommand(env *environment) *cobra.Command {
	var (
		categoryID int64
		clearIt    bool
	)

	cmd := &cobra.Command{
		Use:   "categorize <id>",
		Short: "Set or clear a movement's category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "movement")
			if err != nil {
				return err
			}
			if categoryID == 0 && !clearIt {
				return fmt.Errorf("either --category or --clear is required")
			}

			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var cat *int64
			if !clearIt {
				cat = &categoryID
			}
			if err := a.ledger.SetCategory(a.ctx, id, cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated movement %d\n", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	cmd.Flags().BoolVar(&clearIt, "clear", false, "remove the category")
	cmd.MarkFlagsMutuallyExclusive("category", "clear")

	return cmd
}

func writeMovements(cmd *cobra.Command, ms report.Movements, names map[int64]string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tAMOUNT\tBALANCE\tCATEGORY")
	for _, m := range ms {
		row := report.MarshalMovement(m, names)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[3], row[4], row[5], row[6])
	}
	return tw.Flush()
}

func writeTotals(cmd *cobra.Command, s report.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "movements: %d\n", s.Movements)
	fmt.Fprintf(out, "expenses:  %s\n", s.Expenses.StringFixed(2))
	fmt.Fprintf(out, "earnings:  %s\n", s.Earnings.StringFixed(2))
	fmt.Fprintf(out, "balance:   %s\n", s.Balance.StringFixed(2))
}
