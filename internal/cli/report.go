package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ledger_system/internal/analytics"
	"ledger_system/internal/domain"
	"ledger_system/internal/insights"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show balances, spending and a spending series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("period")
			period, err := analytics.ParsePeriod(raw)
			if err != nil {
				return err
			}
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			snap, err := appFrom(cmd).Ledger.Snapshot(cmd.Context(), actor)
			if err != nil {
				return err
			}
			report := analytics.Summarize(snap.Accounts, snap.Transactions)
			return emit(cmd, report, func(w io.Writer) error {
				return writeReport(w, report, period)
			})
		},
	}
	cmd.Flags().StringP("period", "p", string(analytics.Monthly), "Series period: daily, weekly, monthly or quarterly")
	return cmd
}

func writeReport(w io.Writer, r analytics.Report, period analytics.Period) error {
	s := r.Spending
	fmt.Fprintf(w, "Accounts:       %d\n", r.AccountCount)
	fmt.Fprintf(w, "Transactions:   %d\n", r.TransactionCount)
	fmt.Fprintf(w, "Total balance:  %s\n", r.TotalBalance.StringFixed(2))
	fmt.Fprintf(w, "Income:         %s\n", s.TotalCredit.StringFixed(2))
	fmt.Fprintf(w, "Expenses:       %s\n", s.TotalDebit.StringFixed(2))
	fmt.Fprintf(w, "Net savings:    %s (%s%%)\n", s.NetSavings.StringFixed(2), s.SavingsPercentage.StringFixed(2))
	fmt.Fprintf(w, "Top category:   %s (%s)\n", r.Highest.Category, r.Highest.Amount.StringFixed(2))

	categories := make([]string, 0, len(r.Categories))
	for c := range r.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c, r.Categories[c].StringFixed(2)})
	}
	fmt.Fprintln(w)
	if err := printTable(w, []string{"CATEGORY", "SPENT"}, rows); err != nil {
		return err
	}

	var series []analytics.Bucket
	switch period {
	case analytics.Daily:
		series = r.Daily
	case analytics.Weekly:
		series = r.Weekly
	case analytics.Quarterly:
		series = r.Quarterly
	default:
		series = r.Monthly
	}
	rows = rows[:0]
	for _, b := range series {
		rows = append(rows, []string{b.Key, b.Amount.StringFixed(2)})
	}
	fmt.Fprintln(w)
	return printTable(w, []string{strings.ToUpper(string(period)), "SPENT"}, rows)
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show observations about your spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			txs, err := appFrom(cmd).Ledger.GetTransactions(cmd.Context(), actor)
			if err != nil {
				return err
			}
			out := insights.ForTransactions(txs)
			return emit(cmd, out, func(w io.Writer) error {
				if len(out) == 0 {
					_, err := fmt.Fprintln(w, "Nothing to report yet")
					return err
				}
				for _, in := range out {
					fmt.Fprintf(w, "[%s] %s\n", in.Severity, in.Message)
				}
				return nil
			})
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every balance against its transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			drift, err := appFrom(cmd).Ledger.VerifyBalances(cmd.Context(), actor)
			if err != nil {
				return err
			}
			if err := emit(cmd, drift, func(w io.Writer) error {
				if len(drift) == 0 {
					_, err := fmt.Fprintln(w, "All balances are consistent")
					return err
				}
				rows := make([][]string, 0, len(drift))
				for _, d := range drift {
					rows = append(rows, []string{d.AccountID, d.Balance.StringFixed(2), d.Expected.StringFixed(2)})
				}
				return printTable(w, []string{"ACCOUNT", "BALANCE", "EXPECTED"}, rows)
			}); err != nil {
				return err
			}
			if len(drift) > 0 {
				return fmt.Errorf("%d account(s) out of balance", len(drift))
			}
			return nil
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the suggested transaction categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, domain.Categories, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, strings.Join(domain.Categories, "\n"))
				return err
			})
		},
	}
}
