package commands

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
)

// Backup returns the command that uploads the cluster state to S3.
//
// Environment variables:
//
//	TALHYBRID_S3_ENDPOINT, TALHYBRID_S3_BUCKET, TALHYBRID_S3_ACCESS_KEY,
//	TALHYBRID_S3_SECRET_KEY: backup target (required)
//	TALHYBRID_S3_REGION: region (default "fsn1")
func Backup(opts *handlers.Options) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload descriptor, node index and secrets to S3",
		Long: heredoc.Doc(`
			Upload the descriptor, node index, schematic, secrets bundle and
			talosconfig to an S3-compatible bucket under
			<cluster>/<UTC timestamp>/. The bucket is created when missing.

			With --list, print the backups stored for the cluster instead.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Backup(cmd.Context(), *opts, list)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List stored backups instead of uploading")
	return cmd
}
