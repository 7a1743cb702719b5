package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

func newThemeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the display theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			switch {
			case len(args) == 0:
			case args[0] == "toggle":
				if _, err := a.settings.ToggleTheme(cmd.Context()); err != nil {
					return err
				}
			default:
				if err := a.settings.SetTheme(cmd.Context(), model.Theme(args[0])); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), a.settings.Theme())
			return nil
		},
	}
}
