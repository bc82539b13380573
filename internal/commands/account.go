package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/casterly-dev/casterly/internal/model"
)

func newAccountCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank accounts",
	}
	cmd.AddCommand(
		newAccountAddCommand(env),
		newAccountListCommand(env),
		newAccountShowCommand(env),
		newAccountVerifyCommand(env),
	)
	return cmd
}

func newAccountAddCommand(env *environment) *cobra.Command {
	var (
		description string
		lastDigits  string
		entity      string
		initial     string
		current     string
		owner       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := model.ParseEntity(entity)
			if err != nil {
				return err
			}
			initialBalance, err := model.ParseCurrency(initial)
			if err != nil {
				return fmt.Errorf("initial balance: %w", err)
			}
			var currentBalance decimal.NullDecimal
			if current != "" {
				d, err := model.ParseCurrency(current)
				if err != nil {
					return fmt.Errorf("current balance: %w", err)
				}
				currentBalance = decimal.NewNullDecimal(d)
			}
			if owner == "" {
				owner = a.cfg.Owner
			}

			acct, err := a.ledger.OpenAccount(a.ctx, model.NewAccount{
				Owner:          owner,
				Description:    description,
				LastDigits:     lastDigits,
				Entity:         e,
				InitialBalance: initialBalance,
				CurrentBalance: currentBalance,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened account %d: %s\n", acct.ID, acct)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "account description (required)")
	cmd.Flags().StringVar(&lastDigits, "digits", "", "last four digits of the account number (required)")
	cmd.Flags().StringVar(&entity, "entity", "", fmt.Sprintf("bank entity %v (required)", model.Entities()))
	cmd.Flags().StringVar(&initial, "initial", "0", "initial balance")
	cmd.Flags().StringVar(&current, "current", "", "current balance (default: initial balance)")
	cmd.Flags().StringVar(&owner, "owner", "", "owner (default: from config)")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("digits")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func newAccountListCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			accts, err := a.queries().ListAccounts(a.ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tENTITY\tNUMBER\tDESCRIPTION\tBALANCE")
			for _, acct := range accts {
				fmt.Fprintf(tw, "%d\t%s\t****%s\t%s\t%s\n",
					acct.ID, acct.Entity, acct.LastDigits, acct.Description, acct.CurrentBalance.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func newAccountShowCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			acct, err := a.queries().GetAccount(a.ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", acct)
			fmt.Fprintf(out, "owner:           %s\n", acct.Owner)
			fmt.Fprintf(out, "description:     %s\n", acct.Description)
			fmt.Fprintf(out, "initial balance: %s\n", acct.InitialBalance.StringFixed(2))
			fmt.Fprintf(out, "current balance: %s\n", acct.CurrentBalance.StringFixed(2))
			return nil
		},
	}
}

func newAccountVerifyCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Check an account's balance against its movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}
			a, err := env.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.ledger.Verify(a.ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "movements: %d\n", v.Movements)
			fmt.Fprintf(out, "stored:    %s\n", v.Account.CurrentBalance.StringFixed(2))
			fmt.Fprintf(out, "expected:  %s\n", v.Expected.StringFixed(2))
			if v.LastSnapshot.Valid {
				fmt.Fprintf(out, "snapshot:  %s\n", v.LastSnapshot.Decimal.StringFixed(2))
			}
			if !v.Consistent() {
				return fmt.Errorf("account %d balance does not match its movements", id)
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
