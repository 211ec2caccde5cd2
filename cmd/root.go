package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnhub/internal/config"
	"github.com/abhisek/learnhub/internal/logger"
	"github.com/abhisek/learnhub/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "learnhub",
	Short: "AI learning platform in your terminal",
	Long: "LearnHub: sign in, generate courses, study lessons, take quizzes and talk to an AI tutor.\n" +
		"Run `learnhub serve` to start the chat proxy the tutor panel talks to.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default: $XDG_CONFIG_HOME/learnhub/learnhub.yaml or ./learnhub.yaml)")
	pf.String("api-url", "", "Learning platform API base URL")
	pf.String("proxy-url", "", "Chat proxy base URL")
	pf.String("provider", "", "Model provider for serve: azure, openai, anthropic, gemini, openrouter, mock")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Log file path")
	pf.String("db", "", "Path to the usage database (overrides LEARNHUB_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration for cmd, letting changed flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for cmd. The TUI logs to a file so the
// terminal stays clean; other commands also log to stderr.
func newLogger(cfg *config.Config, console bool) (*logger.Logger, error) {
	file := cfg.Log.File
	if file == "" && !console {
		file = config.DefaultLogFile()
	}
	if file != "" {
		if err := store.EnsureDir(file); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	return logger.New(logger.Options{
		Level:    cfg.Log.Level,
		File:     file,
		Console:  console,
		Redact:   cfg.Log.Redact,
		HashSalt: cfg.Log.Salt,
	})
}

// resolveDBPath returns the usage database path: config (flag, env or
// file) first, then LEARNHUB_DB, then the XDG data dir.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
