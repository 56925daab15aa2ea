package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"katydid-storefront/pkg/app"
	"katydid-storefront/pkg/notify"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Login and keep the session in local storage",
	Long:  "Login and keep the session in local storage. Without --password the password is read from the first line of stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		password := loginPassword
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("password required")
			}
			password = strings.TrimRight(line, "\r\n")
		}

		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.Login(ctx, args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s), expires %s\n",
			session.Email, session.Role, session.ExpiresAt.Format("2006-01-02 15:04"))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := app.New(ctx, cfg, app.WithNotifier(notify.NewTerminal(cmd.ErrOrStderr(), nil)))
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Logout(ctx)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (read from stdin when empty)")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
