package commands

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
)

// Init returns the command that seeds the config folder.
//
// Flags:
//
//	--interactive, -i: Ask for cluster name, endpoint and network zone
func Init(opts *handlers.Options) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config folder from templates",
		Long: heredoc.Doc(`
			Copy the cluster descriptor, the image schematic and the node
			index from the template folder into the config folder and
			generate the Talos secrets bundle.

			Files that already exist are never overwritten, so init is safe
			to re-run.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), *opts, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for cluster name, endpoint and zone")

	return cmd
}
