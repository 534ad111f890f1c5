package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ledger_system/internal/auth"
)

// readPassword takes --password or, when absent, the first line of stdin
func readPassword(cmd *cobra.Command) (string, error) {
	pw, _ := cmd.Flags().GetString("password")
	if pw != "" {
		return pw, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register NAME EMAIL",
		Short: "Create a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd)
			if err != nil {
				return err
			}
			u, err := appFrom(cmd).Users.Register(cmd.Context(), auth.RegisterInput{Name: args[0], Email: args[1], Password: pw})
			if err != nil {
				return err
			}
			return emit(cmd, u.Actor(), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Registered %s <%s>\n", u.Name, u.Email)
				return err
			})
		},
	}
	cmd.Flags().StringP("password", "p", "", "Password (read from stdin when omitted)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Log in; later commands act as this user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd)
			if err != nil {
				return err
			}
			u, err := appFrom(cmd).Users.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			return emit(cmd, u.Actor(), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s <%s>\n", u.Name, u.Email)
				return err
			})
		},
	}
	cmd.Flags().StringP("password", "p", "", "Password (read from stdin when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appFrom(cmd).Users.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			if actor == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			return emit(cmd, actor, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s <%s>\n", actor.Name, actor.Email)
				return err
			})
		},
	}
}
