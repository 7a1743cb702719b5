package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeventeLantos/webhook-chat/internal/export"
	"github.com/LeventeLantos/webhook-chat/internal/model"
	"github.com/LeventeLantos/webhook-chat/internal/render"
	"github.com/LeventeLantos/webhook-chat/internal/service"
)

const configureHint = "The webhook is not configured. Run: webchat config set --url <webhook-url> [--method POST] [--response-url <url>]"

func newSendCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "send <text...>",
		Short: "Send one message and print the transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var exp export.Exporter
			if format != "text" {
				var err error
				if exp, err = export.NewExporter(format); err != nil {
					return err
				}
			}

			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			r := render.New(a.settings.Theme())
			a.notifier.Add(service.NotifierFunc(func(n model.Notification) {
				fmt.Fprintln(cmd.ErrOrStderr(), r.Notification(n))
			}))

			res, err := a.delivery.Send(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, service.ErrNotConfigured) {
				return fmt.Errorf("%w\n%s", err, configureHint)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if exp != nil {
				if err := exp.Export(a.list.Snapshot(), out); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, r.Transcript(a.list.Snapshot()))
			}

			if !res.Delivered {
				return fmt.Errorf("message not delivered: %w", res.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, jsonl, yaml, md")
	return cmd
}
