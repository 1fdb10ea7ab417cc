package machineconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/talhybrid/internal/addressing"
	"github.com/imamik/talhybrid/internal/discovery"
	"github.com/imamik/talhybrid/internal/nodeindex"
	"github.com/imamik/talhybrid/internal/patches"
	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/render"
)

// ControlPlaneFile is the control plane machine config written to the
// nodes folder.
const ControlPlaneFile = "controlplane.yaml"

// Pipeline carries the rendered patch sets and ingested nodes between
// phases.
type Pipeline struct {
	Generator     *talos.Generator
	Engine        *render.Engine
	FailurePolicy talos.FailurePolicy

	global       patches.Set
	controlPlane patches.Set
	worker       patches.Set
	nodes        []discovery.Node
}

// NewPipeline returns a pipeline running talosctl from PATH.
func NewPipeline(policy talos.FailurePolicy) *Pipeline {
	return &Pipeline{
		Generator:     talos.NewGenerator(),
		Engine:        render.NewEngine(),
		FailurePolicy: policy,
	}
}

// Phases returns the render phases in execution order.
func (p *Pipeline) Phases() []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.PhaseFunc{PhaseName: "secrets", Fn: p.ensureSecrets},
		provisioning.PhaseFunc{PhaseName: "patches", Fn: p.renderPatches},
		provisioning.PhaseFunc{PhaseName: "controlplane config", Fn: p.generateControlPlane},
		provisioning.PhaseFunc{PhaseName: "talosconfig", Fn: p.generateTalosconfig},
		provisioning.PhaseFunc{PhaseName: "worker nodes", Fn: p.renderNodes},
		provisioning.PhaseFunc{PhaseName: "worker configs", Fn: p.generateWorkers},
		provisioning.PhaseFunc{PhaseName: "next steps", Fn: p.printFollowUp},
	}
}

// Nodes returns the worker nodes accepted by the last run.
func (p *Pipeline) Nodes() []discovery.Node {
	return p.nodes
}

func (p *Pipeline) ensureSecrets(ctx *provisioning.Context) error {
	path := ctx.Paths.Config.SecretsFile()
	_, created, err := talos.GetOrGenerateSecrets(path, ctx.Descriptor().Talos.Version)
	if err != nil {
		return fmt.Errorf("failed to prepare secrets: %w", err)
	}
	if created {
		provisioning.LogResourceCreated(ctx.Observer, "secrets", "secrets", path, "-")
	} else {
		provisioning.LogResourceExists(ctx.Observer, "secrets", "secrets", path, "-")
	}
	return nil
}

func (p *Pipeline) renderPatches(ctx *provisioning.Context) error {
	cluster := discovery.NewClusterContext(ctx.Descriptor())
	if err := cluster.Validate(); err != nil {
		return err
	}
	values := cluster.Values()

	src, dst := ctx.Paths.Templates, ctx.Paths.Config
	folders := []struct {
		set      *patches.Set
		src, dst string
	}{
		{&p.global, src.PatchesDir(), dst.PatchesDir()},
		{&p.controlPlane, src.RolePatchesDir(string(patches.TargetControlPlane)), dst.RolePatchesDir(string(patches.TargetControlPlane))},
		{&p.worker, src.RolePatchesDir(string(patches.TargetWorker)), dst.RolePatchesDir(string(patches.TargetWorker))},
	}
	for _, f := range folders {
		names, err := p.Engine.RenderFolder(f.src, f.dst, values)
		if err != nil {
			return err
		}
		*f.set = patches.Set{Dir: f.dst, Names: names}
		ctx.Observer.Printf("Rendered %d patches into %s", len(names), f.dst)
	}
	return nil
}

func (p *Pipeline) generateControlPlane(ctx *provisioning.Context) error {
	refs, err := patches.Assemble(patches.TargetControlPlane, p.global, p.controlPlane, nil)
	if err != nil {
		return err
	}
	return p.generate(ctx, p.request(ctx, patches.TargetControlPlane,
		filepath.Join(ctx.Paths.Config.NodesDir(), ControlPlaneFile), refs))
}

func (p *Pipeline) generateTalosconfig(ctx *provisioning.Context) error {
	return p.generate(ctx, p.request(ctx, patches.TargetTalosconfig, ctx.Paths.Config.TalosconfigFile(), nil))
}

func (p *Pipeline) renderNodes(ctx *provisioning.Context) error {
	d := ctx.Descriptor()

	registry, err := nodeindex.Load(ctx.Paths.Config.NodesIndexFile())
	if errors.Is(err, os.ErrNotExist) {
		ctx.Observer.Warnf("node index %s not found, skipping worker nodes", ctx.Paths.Config.NodesIndexFile())
		p.nodes = nil
		return nil
	}
	if err != nil {
		return err
	}

	planner, err := addressing.NewPlanner(d.Cluster.Networking, d.Cluster.Name)
	if err != nil {
		return err
	}

	ingester := &discovery.Ingester{
		Dir:      ctx.Paths.Config.DiscoveryDir(),
		Registry: registry,
		Planner:  planner,
		Cluster:  discovery.NewClusterContext(d),
		Log:      ctx.Observer,
	}
	nodes, err := ingester.Ingest()
	if err != nil {
		return err
	}

	template := ctx.Paths.Templates.NodeTemplateFile()
	for _, n := range nodes {
		dst := filepath.Join(ctx.Paths.Config.NodesDir(), n.Summary.PatchFile)
		if err := p.Engine.RenderFile(template, dst, n.Context.Values()); err != nil {
			return fmt.Errorf("node %s: %w", n.Summary.Name, err)
		}
		s := n.Summary
		ctx.Observer.Printf("Node %s (ordinal %d): public %s, private %s, config %s",
			s.Name, s.Ordinal, s.PublicIP, s.PrivateIP, s.ConfigFile)
	}
	p.nodes = nodes
	return nil
}

func (p *Pipeline) generateWorkers(ctx *provisioning.Context) error {
	if len(p.nodes) == 0 {
		ctx.Observer.Printf("No worker nodes discovered")
		return nil
	}

	nodesDir := ctx.Paths.Config.NodesDir()
	reqs := make([]talos.Request, 0, len(p.nodes))
	for _, n := range p.nodes {
		override := patches.Reference{Path: filepath.Join(nodesDir, n.Summary.PatchFile)}
		refs, err := patches.Assemble(patches.TargetWorker, p.global, p.worker, &override)
		if err != nil {
			return err
		}
		reqs = append(reqs, p.request(ctx, patches.TargetWorker, filepath.Join(nodesDir, n.Summary.ConfigFile), refs))
	}

	return p.Generator.GenerateWorkers(ctx, reqs, p.FailurePolicy, func(req talos.Request, err error) {
		ctx.Metrics.RecordGenerator(string(req.Target), err)
		if err != nil {
			ctx.Observer.Warnf("failed to generate %s: %v", req.OutputPath, err)
			return
		}
		provisioning.LogResourceCreated(ctx.Observer, "worker configs", "machine config", req.OutputPath, "-")
	})
}

func (p *Pipeline) printFollowUp(ctx *provisioning.Context) error {
	nodes := make([]talos.FollowUpNode, 0, len(p.nodes))
	for _, n := range p.nodes {
		nodes = append(nodes, talos.FollowUpNode{
			PublicIP:   n.Summary.PublicIP,
			ConfigFile: filepath.Join(ctx.Paths.Config.NodesDir(), n.Summary.ConfigFile),
		})
	}
	for _, line := range talos.FollowUpCommands(ctx.Paths.Config.TalosconfigFile(), nodes) {
		ctx.Observer.Printf("%s", line)
	}
	return nil
}

func (p *Pipeline) request(ctx *provisioning.Context, target patches.Target, output string, refs []patches.Reference) talos.Request {
	d := ctx.Descriptor()
	return talos.Request{
		Target:            target,
		OutputPath:        output,
		SecretsPath:       ctx.Paths.Config.SecretsFile(),
		Patches:           refs,
		ClusterName:       d.Cluster.Name,
		Endpoint:          d.Cluster.Endpoint,
		KubernetesVersion: d.Cluster.KubernetesVersion,
	}
}

func (p *Pipeline) generate(ctx *provisioning.Context, req talos.Request) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	err := p.Generator.Generate(ctx, req)
	ctx.Metrics.RecordGenerator(string(req.Target), err)
	if err != nil {
		return err
	}
	provisioning.LogResourceCreated(ctx.Observer, string(req.Target), "machine config", req.OutputPath, "-")
	return nil
}
