package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ledger_system/internal/domain"
)

type contextKey struct{}

// NewRootCmd builds the ledgerctl command tree. open is called once per
// invocation before any subcommand runs.
func NewRootCmd(open Opener) *cobra.Command {
	var opts Options
	var verbose bool

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Track bank accounts, transactions and spending",
		Long: `ledgerctl records bank accounts and their credit and debit transactions,
keeps every balance consistent with its history and reports spending
analytics and insights. Log in once; later commands act as that user
until you log out.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.InfoLevel)
			}
			app, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), contextKey{}, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return appFrom(cmd).Close()
		},
	}
	root.PersistentFlags().StringVar(&opts.DataFile, "data", "", "JSON data file (selects the file backend)")
	root.PersistentFlags().StringVar(&opts.Backend, "backend", "", "Store backend: memory, file, redis or mysql")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every ledger operation")
	root.PersistentFlags().Bool("json", false, "Print results as JSON")

	root.AddCommand(
		newRegisterCmd(), newLoginCmd(), newLogoutCmd(), newWhoamiCmd(),
		newAccountCmd(), newTxCmd(),
		newReportCmd(), newInsightsCmd(), newVerifyCmd(), newCategoriesCmd(),
	)
	return root
}

// Execute runs the command tree with ctx
func Execute(ctx context.Context, open Opener) error {
	return NewRootCmd(open).ExecuteContext(ctx)
}

func appFrom(cmd *cobra.Command) *App {
	return cmd.Context().Value(contextKey{}).(*App)
}

// actorFrom returns the logged-in user, nil when logged out. The ledger
// rejects a nil actor with "user not logged in".
func actorFrom(cmd *cobra.Command) (*domain.Actor, error) {
	actor, err := appFrom(cmd).Users.CurrentUser(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return actor, nil
}
