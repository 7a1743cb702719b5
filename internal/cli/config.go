package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/LeventeLantos/webhook-chat/internal/model"
	"github.com/LeventeLantos/webhook-chat/internal/render"
	"github.com/LeventeLantos/webhook-chat/internal/service"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, change or test the webhook configuration",
	}
	cmd.AddCommand(
		newConfigShowCommand(opts),
		newConfigSetCommand(opts),
		newConfigTestCommand(opts),
	)
	return cmd
}

type configView struct {
	model.WebhookConfig `yaml:",inline"`
	Online              bool        `yaml:"online"`
	Theme               model.Theme `yaml:"theme"`
}

func newConfigShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			b, err := yaml.Marshal(configView{
				WebhookConfig: a.settings.Webhook(),
				Online:        a.settings.Online(),
				Theme:         a.settings.Theme(),
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func newConfigSetCommand(opts *rootOptions) *cobra.Command {
	var url, method, responseURL string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and save the webhook configuration",
		Long: `Validate and save the webhook configuration.

Only the flags you pass are changed. The whole configuration is validated
before anything is written; an invalid value leaves the stored one intact.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("url") && !flags.Changed("method") && !flags.Changed("response-url") {
				return errors.New("nothing to set: pass --url, --method or --response-url")
			}

			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			cfg := a.settings.Webhook()
			if flags.Changed("url") {
				cfg.WebhookURL = url
			}
			if flags.Changed("method") {
				cfg.HTTPMethod = model.HTTPMethod(method)
			}
			if flags.Changed("response-url") {
				cfg.ResponseURL = responseURL
			}

			saved, err := a.settings.SaveWebhook(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved: %s %s\n", saved.HTTPMethod, saved.WebhookURL)
			if saved.ResponseURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Polling replies from %s\n", saved.ResponseURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Webhook URL")
	cmd.Flags().StringVar(&method, "method", "", "HTTP method: GET, POST, PUT, PATCH, DELETE")
	cmd.Flags().StringVar(&responseURL, "response-url", "", "Endpoint polled for delayed replies (empty disables polling)")
	return cmd
}

func newConfigTestCommand(opts *rootOptions) *cobra.Command {
	var url, method string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a connection test to the webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			current := a.settings.Webhook()
			if url == "" {
				url = current.WebhookURL
			}
			if method == "" {
				method = string(current.Method())
			}
			if url == "" {
				return errors.New(configureHint)
			}

			r := render.New(a.settings.Theme())
			notifier := service.NotifierFunc(func(n model.Notification) {
				fmt.Fprintln(cmd.OutOrStdout(), r.Notification(n))
			})

			res, err := service.CheckConnection(cmd.Context(), a.client, notifier, method, url, time.Now())
			if err != nil {
				return err
			}
			if res.Error != "" {
				return fmt.Errorf("connection test failed: %s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "URL to test (defaults to the saved webhook)")
	cmd.Flags().StringVar(&method, "method", "", "HTTP method (defaults to the saved method)")
	return cmd
}
