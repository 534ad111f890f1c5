package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ledger_system/internal/domain"
	"ledger_system/internal/ledger"
)

func newTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Record and edit transactions",
	}
	cmd.AddCommand(newTxAddCmd(), newTxListCmd(), newTxUpdateCmd(), newTxDeleteCmd())
	return cmd
}

var txHeader = []string{"ID", "DATE", "ACCOUNT", "TYPE", "AMOUNT", "CATEGORY", "METHOD", "NOTES"}

func txRows(txs []domain.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{
			t.ID, t.Date.String(), t.AccountID, string(t.Type), t.Amount.StringFixed(2),
			t.Category, t.PaymentMethod, t.Notes,
		})
	}
	return rows
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, domain.Invalid("invalid amount %q", raw)
	}
	return d, nil
}

func addTxFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("account", "a", "", "Account ID")
	cmd.Flags().StringP("type", "t", "", "credit or debit")
	cmd.Flags().StringP("category", "c", "", "Category (default Other)")
	cmd.Flags().StringP("method", "m", "", "Payment method")
	cmd.Flags().String("amount", "", "Positive amount")
	cmd.Flags().StringP("date", "d", "", "Date as YYYY-MM-DD")
	cmd.Flags().StringP("notes", "n", "", "Notes")
}

func newTxAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			accountID, _ := f.GetString("account")
			typ, _ := f.GetString("type")
			category, _ := f.GetString("category")
			method, _ := f.GetString("method")
			rawAmount, _ := f.GetString("amount")
			date, _ := f.GetString("date")
			notes, _ := f.GetString("notes")
			if date == "" {
				date = time.Now().Format(domain.DateLayout)
			}
			amount, err := parseAmount(rawAmount)
			if err != nil {
				return err
			}
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			tx, err := appFrom(cmd).Ledger.AddTransaction(cmd.Context(), actor, ledger.NewTransaction{
				AccountID:     accountID,
				Type:          domain.TransactionType(typ),
				Category:      category,
				PaymentMethod: method,
				Amount:        amount,
				Date:          date,
				Notes:         notes,
			})
			if err != nil {
				return err
			}
			return emit(cmd, tx, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Recorded %s %s on %s (%s)\n", tx.Type, tx.Amount.StringFixed(2), tx.Date, tx.ID)
				return err
			})
		},
	}
	addTxFlags(cmd)
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newTxListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			txs, err := appFrom(cmd).Ledger.TransactionsInRange(cmd.Context(), actor, from, to)
			if err != nil {
				return err
			}
			return emit(cmd, txs, func(w io.Writer) error {
				return printTable(w, txHeader, txRows(txs))
			})
		},
	}
	cmd.Flags().String("from", "", "First date to include")
	cmd.Flags().String("to", "", "Last date to include")
	return cmd
}

func newTxUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update TRANSACTION_ID",
		Short: "Edit a transaction; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			str := func(name string) *string {
				if !f.Changed(name) {
					return nil
				}
				v, _ := f.GetString(name)
				return &v
			}
			patch := ledger.TransactionPatch{
				AccountID:     str("account"),
				Category:      str("category"),
				PaymentMethod: str("method"),
				Date:          str("date"),
				Notes:         str("notes"),
			}
			if v := str("type"); v != nil {
				typ := domain.TransactionType(*v)
				patch.Type = &typ
			}
			if v := str("amount"); v != nil {
				amount, err := parseAmount(*v)
				if err != nil {
					return err
				}
				patch.Amount = &amount
			}
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			tx, err := appFrom(cmd).Ledger.UpdateTransaction(cmd.Context(), actor, args[0], patch)
			if err != nil {
				return err
			}
			return emit(cmd, tx, func(w io.Writer) error {
				return printTable(w, txHeader, txRows([]domain.Transaction{tx}))
			})
		},
	}
	addTxFlags(cmd)
	return cmd
}

func newTxDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete TRANSACTION_ID",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction and reverse its effect",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			if err := appFrom(cmd).Ledger.DeleteTransaction(cmd.Context(), actor, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %s\n", args[0])
			return nil
		},
	}
}
