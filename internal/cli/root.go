package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/LeventeLantos/webhook-chat/internal/config"
	"github.com/LeventeLantos/webhook-chat/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

type rootOptions struct {
	verbose bool
	envFile string
}

// NewRootCommand builds the webchat command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "webchat",
		Short: "Chat with a workflow through its webhook",
		Long: `Chat with an automation workflow (n8n or similar) over a webhook.

Every message you type is forwarded with one HTTP call to the configured
webhook; the reply, if any, shows up as an incoming message. Replies that
arrive later can be collected from a response endpoint by the poller.

Quick Start:
  webchat config set --url https://n8n.example.com/webhook/abc
  webchat chat                           # Interactive chat
  webchat send "hello"                   # One-shot send
  webchat serve                          # HTTP API + websocket stream`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load environment from this file instead of .env")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(
		newServeCommand(opts),
		newChatCommand(opts),
		newSendCommand(opts),
		newConfigCommand(opts),
		newThemeCommand(opts),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (o *rootOptions) bootstrap(cmd *cobra.Command) (*app, error) {
	if err := loadEnv(o.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadAll()
	if err != nil {
		return nil, err
	}

	log := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format, o.verbose)
	slog.SetDefault(log)
	return newApp(cmd.Context(), cfg, log)
}

// loadEnv reads .env when present; an explicit file must exist.
func loadEnv(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
