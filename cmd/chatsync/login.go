package main

import (
	"chat-sync/repositories"
	"chat-sync/session"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	loginToken   string
	loginEmail   string
	clearHistory bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the account used when IDENTITY_MODE=account",
	Long: `Store the signed-in account. Either pass the token issued by the
authentication service with --token, or an e-mail with --email.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, log, db, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		var account repositories.Account
		switch {
		case loginToken != "":
			if account, err = session.AccountFromToken(loginToken); err != nil {
				return err
			}
		case strings.TrimSpace(loginEmail) != "":
			account = repositories.Account{ID: uuid.NewString(), Email: strings.TrimSpace(loginEmail)}
		default:
			return fmt.Errorf("either --token or --email is required")
		}

		if err = session.NewAccount(log, repositories.NewAccountRepository(db)).SignIn(account); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", session.DisplayName(account.Email))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, log, db, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err = session.NewAccount(log, repositories.NewAccountRepository(db)).SignOut(); err != nil {
			return err
		}
		if clearHistory {
			if err = repositories.NewHistoryRepository(db, log, config.HistoryKey).DeleteHistory(); err != nil {
				return fmt.Errorf("could not clear history: %w", err)
			}
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "token issued by the authentication service")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account e-mail")
	logoutCmd.Flags().BoolVar(&clearHistory, "clear-history", false, "also delete the cached history")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
