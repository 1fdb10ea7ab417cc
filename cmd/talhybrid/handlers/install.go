package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/talhybrid/internal/nodeindex"
	"github.com/imamik/talhybrid/internal/platform/ssh"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/provisioning/install"
)

// InstallOptions select the target machine and how to reach it.
type InstallOptions struct {
	// IP is the public address of the machine. Mutually exclusive with Index.
	IP string
	// Index is the node ordinal resolved through the node index.
	Index int

	User            string
	KeyFile         string
	Disks           []string
	Reboot          bool
	InsecureHostKey bool
}

// remoteExecutor is an install.Executor holding a connection.
type remoteExecutor interface {
	install.Executor
	Close() error
}

// newRemoteExecutor opens an SSH session client; replaced in tests.
var newRemoteExecutor = func(cfg *ssh.Config) (remoteExecutor, error) {
	client, err := ssh.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Install writes Talos onto a bare-metal machine booted into the rescue
// system and records its disk facts in the discovery folder.
func Install(ctx context.Context, opts Options, in InstallOptions) error {
	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}

	host, err := resolveHost(pctx, in)
	if err != nil {
		return err
	}

	d := pctx.Descriptor()
	if d.Talos.SchematicID == "" {
		return fmt.Errorf("talos.schematicId is not set, run the schematic command first")
	}

	key, err := readKey(in.KeyFile)
	if err != nil {
		return err
	}

	exec, err := newRemoteExecutor(&ssh.Config{
		Host:                  host,
		User:                  in.User,
		PrivateKey:            key,
		InsecureIgnoreHostKey: in.InsecureHostKey,
	})
	if err != nil {
		return err
	}
	defer func() { _ = exec.Close() }()

	installer := &install.Installer{Exec: exec, Observer: pctx.Observer}
	phase := provisioning.PhaseFunc{
		PhaseName: "install",
		Fn: func(pctx *provisioning.Context) error {
			res, err := installer.Run(pctx, install.Options{
				Host:         host,
				Disks:        in.Disks,
				ImageURL:     install.ImageURL(newFactoryClient(), d.Talos.SchematicID, d.Talos.Version),
				DiscoveryDir: pctx.Paths.Config.DiscoveryDir(),
				Reboot:       in.Reboot,
			})
			if err != nil {
				return err
			}
			pctx.Observer.Printf("Installed on /dev/%s, run 'talhybrid render' to generate the node config", res.PrimaryDisk)
			return nil
		},
	}
	return runPhases(pctx, opts, []provisioning.Phase{phase})
}

func resolveHost(pctx *provisioning.Context, in InstallOptions) (string, error) {
	switch {
	case in.IP != "" && in.Index != 0:
		return "", fmt.Errorf("--ip and --index are mutually exclusive")
	case in.IP != "":
		return in.IP, nil
	case in.Index != 0:
		registry, err := nodeindex.Load(pctx.Paths.Config.NodesIndexFile())
		if err != nil {
			return "", err
		}
		return registry.AddressOf(in.Index)
	}
	return "", fmt.Errorf("either --ip or --index is required")
}

func readKey(path string) ([]byte, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		path = filepath.Join(home, ".ssh", "id_ed25519")
	}
	// #nosec G304
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}
	return key, nil
}
