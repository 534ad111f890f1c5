package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ledger_system/internal/domain"
	"ledger_system/internal/ledger"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Manage bank accounts",
	}
	cmd.AddCommand(newAccountAddCmd(), newAccountListCmd(), newAccountUpdateCmd(), newAccountDeleteCmd())
	return cmd
}

func accountRows(accounts []domain.Account) [][]string {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.ID, a.BankName, a.AccountType, a.Balance.StringFixed(2), a.InitialBalance.StringFixed(2)})
	}
	return rows
}

var accountHeader = []string{"ID", "BANK", "TYPE", "BALANCE", "INITIAL"}

func newAccountAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add BANK_NAME",
		Short: "Open an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountType, _ := cmd.Flags().GetString("type")
			raw, _ := cmd.Flags().GetString("balance")
			initial, err := decimal.NewFromString(raw)
			if err != nil {
				return domain.Invalid("invalid initial balance %q", raw)
			}
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			acc, err := appFrom(cmd).Ledger.AddAccount(cmd.Context(), actor, ledger.NewAccount{
				BankName:       args[0],
				AccountType:    accountType,
				InitialBalance: initial,
			})
			if err != nil {
				return err
			}
			return emit(cmd, acc, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added account %s (%s, balance %s)\n", acc.ID, acc.BankName, acc.Balance.StringFixed(2))
				return err
			})
		},
	}
	cmd.Flags().StringP("type", "t", "Savings", "Account type")
	cmd.Flags().StringP("balance", "b", "0", "Initial balance")
	return cmd
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			accounts, err := appFrom(cmd).Ledger.GetAccounts(cmd.Context(), actor)
			if err != nil {
				return err
			}
			return emit(cmd, accounts, func(w io.Writer) error {
				return printTable(w, accountHeader, accountRows(accounts))
			})
		},
	}
}

func newAccountUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ACCOUNT_ID",
		Short: "Rename an account or change its type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch ledger.AccountPatch
			if cmd.Flags().Changed("bank") {
				v, _ := cmd.Flags().GetString("bank")
				patch.BankName = &v
			}
			if cmd.Flags().Changed("type") {
				v, _ := cmd.Flags().GetString("type")
				patch.AccountType = &v
			}
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			acc, err := appFrom(cmd).Ledger.UpdateAccount(cmd.Context(), actor, args[0], patch)
			if err != nil {
				return err
			}
			return emit(cmd, acc, func(w io.Writer) error {
				return printTable(w, accountHeader, accountRows([]domain.Account{acc}))
			})
		},
	}
	cmd.Flags().String("bank", "", "New bank name")
	cmd.Flags().StringP("type", "t", "", "New account type")
	return cmd
}

func newAccountDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ACCOUNT_ID",
		Aliases: []string{"rm"},
		Short:   "Delete an account without transactions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			if err := appFrom(cmd).Ledger.DeleteAccount(cmd.Context(), actor, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", args[0])
			return nil
		},
	}
}
