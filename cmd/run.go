package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/app"
	"github.com/abhisek/learnhub/internal/chat"
	"github.com/abhisek/learnhub/internal/config"
	"github.com/abhisek/learnhub/internal/identity"
	"github.com/abhisek/learnhub/internal/logger"
)

// runApp builds the identity session, API client and chat panel, then
// launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
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

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Scopes:  apiScopes(cfg),
		Tokens:  session,
		Timeout: cfg.API.Timeout,
		Logger:  log.With("component", "api"),
	})
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	overlay := chat.NewOverlay(chat.Options{
		Sender:  chat.NewClient(cfg.Chat.ProxyURL, cfg.Chat.Timeout, log),
		Logger:  log,
		Context: ctx,
	})

	log.Info("starting", "version", version, "api", cfg.API.BaseURL, "proxy", cfg.Chat.ProxyURL)
	if err := app.Run(app.Options{
		Session: session,
		API:     client,
		Chat:    overlay,
		Logger:  log,
		Context: ctx,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

func newSession(cfg *config.Config, log *logger.Logger) (*identity.OIDCSession, error) {
	scopes := append([]string{}, cfg.Identity.Scopes...)
	scopes = append(scopes, apiScopes(cfg)...)
	session, err := identity.NewOIDCSession(identity.Config{
		ClientID:              cfg.Identity.ClientID,
		Authority:             cfg.Identity.Authority,
		RedirectURI:           cfg.Identity.RedirectURI,
		PostLogoutRedirectURI: cfg.Identity.PostLogoutRedirectURI,
		Scopes:                scopes,
	}, log.With("component", "identity"))
	if err != nil {
		return nil, fmt.Errorf("create identity session: %w", err)
	}
	return session, nil
}

func apiScopes(cfg *config.Config) []string {
	if cfg.Identity.APIScope == "" {
		return nil
	}
	return []string{cfg.Identity.APIScope}
}
