package commands

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
)

// Render returns the command that generates all machine configs.
func Render(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render patches and generate Talos machine configs",
		Long: heredoc.Doc(`
			Generate the secrets bundle if missing, render the global,
			controlplane and worker patch templates, then run talosctl gen
			config for the control plane, the talosconfig and every worker
			with a discovery record.

			Worker addresses are derived from the node index ordinal. With
			--failure-policy continue, a failing worker does not stop the
			remaining ones; the run still fails at the end.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(cmd.Context(), *opts)
		},
	}
}
