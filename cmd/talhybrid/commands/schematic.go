package commands

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
)

// Schematic returns the command that registers the image schematic.
func Schematic(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "schematic",
		Short: "Register talos/schematic.yaml with the image factory",
		Long: heredoc.Doc(`
			Submit talos/schematic.yaml to the Talos image factory and store
			the returned schematic ID as talos.schematicId in the descriptor.
			The factory answers with the same ID for the same content.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Schematic(cmd.Context(), *opts)
		},
	}
}
