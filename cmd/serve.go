package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnhub/internal/chatproxy"
	"github.com/abhisek/learnhub/internal/llm"
	"github.com/abhisek/learnhub/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat proxy the AI tutor panel talks to",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg, true)
		if err != nil {
			return err
		}
		defer log.Sync()

		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		provider, err := llm.NewProvider(ctx, cfg.LLM, st.UsageRepo(), log.With("component", "llm"))
		if err != nil {
			return fmt.Errorf("model provider not configured: %w", err)
		}

		srv := chatproxy.New(chatproxy.Options{
			Provider:       provider,
			Logger:         log,
			Mode:           cfg.Server.Mode,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RateLimit:      cfg.Server.RateLimit,
			Burst:          cfg.Server.Burst,
			Timeout:        cfg.LLM.Timeout,
		})
		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":3000", "Listen address")
}
