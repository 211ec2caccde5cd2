package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check the sign-in configuration by signing in through the browser",
	Long: "Runs the browser sign-in once and prints the account it returns. Tokens live only\n" +
		"for the process, so this is a configuration check; the TUI signs in on its own.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.ValidateClient(); err != nil {
			return fmt.Errorf("configuration incomplete:\n%w", err)
		}
		log, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer log.Sync()

		session, err := newSession(cfg, log)
		if err != nil {
			return err
		}

		fmt.Println("Opening your browser to sign in...")
		acct, err := session.SignIn(cmd.Context())
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}

		fmt.Printf("Signed in as %s\n", acct.DisplayName())
		if acct.Username != "" && acct.Username != acct.DisplayName() {
			fmt.Printf("Username:  %s\n", acct.Username)
		}
		fmt.Printf("Account:   %s\n", acct.ID)
		if acct.TenantID != "" {
			fmt.Printf("Tenant:    %s\n", acct.TenantID)
		}

		if scopes := apiScopes(cfg); len(scopes) > 0 {
			if _, err := session.AcquireTokenSilent(cmd.Context(), scopes); err != nil {
				return fmt.Errorf("acquire api token: %w", err)
			}
			fmt.Println("API token: ok")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the identity provider session in your browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer log.Sync()

		session, err := newSession(cfg, log)
		if err != nil {
			return err
		}
		fmt.Println("Opening", session.LogoutURL())
		return session.SignOut(cmd.Context())
	},
}
