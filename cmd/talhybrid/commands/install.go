package commands

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
)

// Install returns the command that writes Talos onto a bare-metal machine.
//
// Flags:
//
//	--ip: Public address of the machine
//	--index: Node ordinal resolved through the node index
//	--user: SSH user (default "root")
//	--key: Private key file (default ~/.ssh/id_ed25519)
//	--disk: Disk to wipe, repeatable (default both NVMe disks)
//	--reboot: Reboot into Talos when done
//	--insecure-host-key: Skip known_hosts verification
func Install(opts *handlers.Options) *cobra.Command {
	var in handlers.InstallOptions

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install Talos on a Robot machine in the rescue system",
		Long: heredoc.Doc(`
			Connect to a Hetzner Robot machine booted into the rescue system,
			wipe its disks, write the Talos metal image for talos.schematicId
			onto the primary disk and record the disk facts in
			discovery/<ip>.yaml for the render command.

			Connecting is retried while the rescue system boots. Install
			steps run once; a failing step stops the run.
		`),
		Example: heredoc.Doc(`
			talhybrid install --index 1 --insecure-host-key
			talhybrid install --ip 203.0.113.10 --disk /dev/sda --disk /dev/sdb --reboot
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), *opts, in)
		},
	}

	cmd.Flags().StringVar(&in.IP, "ip", "", "Public address of the machine")
	cmd.Flags().IntVar(&in.Index, "index", 0, "Node ordinal from the node index")
	cmd.Flags().StringVar(&in.User, "user", "root", "SSH user")
	cmd.Flags().StringVar(&in.KeyFile, "key", "", "SSH private key file (default ~/.ssh/id_ed25519)")
	cmd.Flags().StringArrayVar(&in.Disks, "disk", nil, "Disk to wipe, repeatable (default /dev/nvme0n1 and /dev/nvme1n1)")
	cmd.Flags().BoolVar(&in.Reboot, "reboot", false, "Reboot the machine when done")
	cmd.Flags().BoolVar(&in.InsecureHostKey, "insecure-host-key", false, "Do not verify the host key against known_hosts")
	cmd.MarkFlagsMutuallyExclusive("ip", "index")
	cmd.MarkFlagsOneRequired("ip", "index")

	return cmd
}
