package commands

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/imamik/talhybrid/cmd/talhybrid/handlers"
)

// Image returns the command that uploads the Talos snapshot.
//
// Environment variables:
//
//	HCLOUD_TOKEN: Hetzner Cloud API token (required)
func Image(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "image",
		Short: "Upload the Talos image as a Hetzner Cloud snapshot",
		Long: heredoc.Doc(`
			Upload the factory image for talos.schematicId and talos.version
			as a Hetzner Cloud snapshot, unless a snapshot with the same
			label already exists, and store its ID as hcloud-image-id.

			The upload runs hcloud-upload-image through docker.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Image(cmd.Context(), *opts)
		},
	}
}

// VSwitch returns the command that reconciles the Robot vSwitch.
//
// Environment variables:
//
//	HETZNER_ROBOT_USER, HETZNER_ROBOT_PASSWORD: Robot webservice credentials (required)
func VSwitch(opts *handlers.Options) *cobra.Command {
	var attach bool
	cmd := &cobra.Command{
		Use:   "vswitch",
		Short: "Find or create the Robot vSwitch",
		Long: heredoc.Doc(`
			Find the vSwitch named after the cluster with robot-vlan-tag, or
			create it, and store its ID as robot-vswitch-id.

			With --attach, every server in cluster_nodes_index.yaml that is
			not yet on the vSwitch is attached to it. Servers are never
			detached.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.VSwitch(cmd.Context(), *opts, attach)
		},
	}
	cmd.Flags().BoolVar(&attach, "attach", false, "Attach the indexed servers to the vSwitch")
	return cmd
}

// Network returns the command that reconciles the cloud network.
func Network(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "net",
		Aliases: []string{"network"},
		Short:   "Find or create the cloud network and its subnets",
		Long: heredoc.Doc(`
			Find or create the cluster network over private-node-cidr. A new
			network gets the vSwitch subnet (subnet-metal), the server subnet
			(subnet-virtual) and route exposure to the vSwitch. The network ID
			is stored as hcloud-network-id.

			Requires robot-vswitch-id; run vswitch first.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Network(cmd.Context(), *opts)
		},
	}
}

// LoadBalancer returns the command that reconciles the control plane load balancer.
func LoadBalancer(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "lb",
		Aliases: []string{"load-balancer"},
		Short:   "Find or create the control plane load balancer",
		Long: heredoc.Doc(`
			Find or create cp-lb-count load balancers of cp-lb-type in the
			network zone. New load balancers forward TCP 6443 to servers
			labelled type=controlplane. The public IPv4 address is stored as
			cp-lb-ip.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.LoadBalancer(cmd.Context(), *opts)
		},
	}
}

// Infra returns the command that runs vswitch, net and lb in order.
func Infra(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "infra",
		Short: "Reconcile vSwitch, network and load balancer",
		Long: heredoc.Doc(`
			Run vswitch, net and lb in dependency order. Each step sees the
			identifiers stored by the previous one. A failing step stops the
			run; resources created before it are kept and reused next time.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Infra(cmd.Context(), *opts)
		},
	}
}
