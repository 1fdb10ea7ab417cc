// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/platform/talos"
)

// Root returns the root command for the talhybrid CLI.
//
// Global flags are bound once here and shared by every subcommand.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:   "talhybrid",
		Short: "Provision hybrid Talos clusters on Hetzner Cloud and Robot",
		Long: heredoc.Doc(`
			Provision a Talos Linux cluster with a cloud control plane and
			bare-metal workers joined through a Hetzner Robot vSwitch.

			Every command reads and updates one cluster descriptor
			(<config-dir>/cluster_config.yaml). Resource IDs are written back
			to it, so re-running a command converges instead of duplicating.

			Typical order:
			  talhybrid init
			  talhybrid schematic
			  talhybrid image
			  talhybrid infra
			  talhybrid install --index 1
			  talhybrid render
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigDir, "config-dir", config.DefaultConfigDir, "Working folder holding the descriptor, index, secrets and rendered configs")
	flags.StringVar(&opts.TemplateDir, "template-dir", config.DefaultTemplateDir, "Folder holding descriptor and patch templates")
	flags.StringVar(&opts.EnvFile, "env-file", ".env", "Optional file with credentials; the process environment takes precedence")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	flags.StringVar(&opts.FailurePolicy, "failure-policy", string(talos.FailurePolicyAbort), "Worker config generation on failure: abort or continue")

	// Setup
	cmd.AddCommand(Init(opts))
	cmd.AddCommand(Schematic(opts))

	// Cloud and Robot resources
	cmd.AddCommand(Image(opts))
	cmd.AddCommand(VSwitch(opts))
	cmd.AddCommand(Network(opts))
	cmd.AddCommand(LoadBalancer(opts))
	cmd.AddCommand(Infra(opts))

	// Nodes
	cmd.AddCommand(Install(opts))
	cmd.AddCommand(Render(opts))

	// Utility
	cmd.AddCommand(Backup(opts))
	cmd.AddCommand(Version())

	return cmd
}
