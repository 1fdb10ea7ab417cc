package config

import "path/filepath"

// Default roots for the working and template trees.
const (
	DefaultConfigDir   = "config"
	DefaultTemplateDir = "config_templates"
)

// Layout is the relative file structure shared by the config and template trees.
type Layout struct {
	Root string
}

// Paths resolves every file and folder a run reads or writes.
type Paths struct {
	Config    Layout
	Templates Layout
}

// NewPaths returns the paths rooted at configDir and templateDir.
func NewPaths(configDir, templateDir string) Paths {
	if configDir == "" {
		configDir = DefaultConfigDir
	}
	if templateDir == "" {
		templateDir = DefaultTemplateDir
	}
	return Paths{Config: Layout{Root: configDir}, Templates: Layout{Root: templateDir}}
}

func (l Layout) ClusterConfigFile() string { return filepath.Join(l.Root, "cluster_config.yaml") }
func (l Layout) NodesIndexFile() string    { return filepath.Join(l.Root, "cluster_nodes_index.yaml") }
func (l Layout) DiscoveryDir() string      { return filepath.Join(l.Root, "discovery") }
func (l Layout) SecretsDir() string        { return filepath.Join(l.Root, "secrets") }
func (l Layout) SecretsFile() string       { return filepath.Join(l.SecretsDir(), "secrets.yaml") }
func (l Layout) TalosconfigFile() string   { return filepath.Join(l.SecretsDir(), "talosconfig.yaml") }
func (l Layout) TalosDir() string          { return filepath.Join(l.Root, "talos") }
func (l Layout) SchematicFile() string     { return filepath.Join(l.TalosDir(), "schematic.yaml") }
func (l Layout) NodesDir() string          { return filepath.Join(l.TalosDir(), "nodes") }
func (l Layout) PatchesDir() string        { return filepath.Join(l.TalosDir(), "patches") }

// RolePatchesDir returns the patch folder for a machine role.
func (l Layout) RolePatchesDir(role string) string { return filepath.Join(l.PatchesDir(), role) }

// NodeTemplateFile is the per-worker override template.
func (l Layout) NodeTemplateFile() string {
	return filepath.Join(l.NodesDir(), "node_template.yaml"+TemplateSuffix)
}
