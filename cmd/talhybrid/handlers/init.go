package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-isatty"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/descriptor"
	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/util/fileutil"
)

// Factory function variables for init - can be replaced in tests.
var (
	// runWizard asks for the cluster identity.
	runWizard = config.RunWizard

	// isTerminal reports whether prompts can be shown.
	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// getOrGenerateSecrets loads or generates the Talos secrets bundle.
	getOrGenerateSecrets = talos.GetOrGenerateSecrets
)

// Init seeds the config folder from the template folder, optionally asks
// for the cluster identity and generates the Talos secrets. Existing files
// are never overwritten.
func Init(ctx context.Context, opts Options, interactive bool) error {
	if interactive && !isTerminal() {
		return fmt.Errorf("--interactive requires a terminal")
	}

	paths := opts.Paths()
	observer := newObserver()

	files := []struct{ src, dst string }{
		{paths.Templates.ClusterConfigFile(), paths.Config.ClusterConfigFile()},
		{paths.Templates.SchematicFile(), paths.Config.SchematicFile()},
		{paths.Templates.NodesIndexFile(), paths.Config.NodesIndexFile()},
	}
	for _, f := range files {
		copied, err := fileutil.CopyIfMissing(f.src, f.dst, 0o644)
		if err != nil {
			return err
		}
		if copied {
			provisioning.LogResourceCreated(observer, "init", "file", f.dst, "-")
		} else {
			provisioning.LogResourceExists(observer, "init", "file", f.dst, "-")
		}
	}

	store, err := descriptor.Open(paths.Config.ClusterConfigFile())
	if err != nil {
		return err
	}

	if interactive {
		if err := applyWizard(ctx, store, observer); err != nil {
			return err
		}
	}

	secretsFile := paths.Config.SecretsFile()
	_, created, err := getOrGenerateSecrets(secretsFile, store.Descriptor().Talos.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize secrets: %w", err)
	}
	if created {
		provisioning.LogResourceCreated(observer, "init", "secrets", secretsFile, "-")
	} else {
		provisioning.LogResourceExists(observer, "init", "secrets", secretsFile, "-")
	}

	observer.Printf("Edit %s, then run 'talhybrid schematic'", store.Path())
	return nil
}

func applyWizard(ctx context.Context, store *descriptor.Store, observer provisioning.Observer) error {
	d := store.Descriptor()
	result, err := runWizard(ctx, config.WizardResult{
		Name:     d.Cluster.Name,
		Endpoint: d.Cluster.Endpoint,
		Zone:     d.Hetzner.Zone,
	})
	if err != nil {
		return err
	}

	fields := result.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := store.Set(k, fields[k]); err != nil {
			return err
		}
		provisioning.LogResourcePersisted(observer, "init", k, fmt.Sprint(fields[k]))
	}
	return nil
}
