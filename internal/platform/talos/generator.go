package talos

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/siderolabs/go-cmd/pkg/cmd"

	"github.com/imamik/talhybrid/internal/patches"
)

// ErrExternalToolFailure is returned when talosctl exits non-zero.
var ErrExternalToolFailure = errors.New("external tool failed")

// DefaultBinary is the talosctl executable looked up on PATH.
const DefaultBinary = "talosctl"

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// EnvRunner executes a command with extra KEY=VALUE entries added to the
// inherited environment. Secrets go here so they never show up in argv.
type EnvRunner interface {
	RunEnv(ctx context.Context, env []string, name string, args ...string) (string, error)
}

// ExecRunner runs commands as subprocesses. There is no timeout beyond ctx.
type ExecRunner struct{}

var (
	_ Runner    = ExecRunner{}
	_ EnvRunner = ExecRunner{}
)

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return cmd.RunContext(ctx, name, args...)
}

// RunEnv implements EnvRunner.
func (ExecRunner) RunEnv(ctx context.Context, env []string, name string, args ...string) (string, error) {
	c := exec.CommandContext(ctx, name, args...)
	c.Env = append(os.Environ(), env...)
	out, err := c.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

// Request describes one talosctl gen config invocation.
type Request struct {
	Target            patches.Target
	OutputPath        string
	SecretsPath       string
	Patches           []patches.Reference
	ClusterName       string
	Endpoint          string
	KubernetesVersion string
}

// Args returns the talosctl argument vector. Every patch gets its own
// --config-patch flag, in list order.
func (r Request) Args() []string {
	args := []string{
		"gen", "config",
		"--with-examples=false",
		"--with-docs=false",
		"--output", r.OutputPath,
		"--output-types", string(r.Target),
		"--kubernetes-version", r.KubernetesVersion,
		"--with-secrets", r.SecretsPath,
	}
	for _, p := range r.Patches {
		args = append(args, "--config-patch", p.Flag())
	}
	return append(args, r.ClusterName, r.Endpoint, "--force")
}

func (r Request) validate() error {
	switch {
	case !r.Target.Valid():
		return fmt.Errorf("unknown output type %q", r.Target)
	case r.OutputPath == "":
		return fmt.Errorf("output path is required")
	case r.SecretsPath == "":
		return fmt.Errorf("secrets path is required")
	case r.ClusterName == "" || r.Endpoint == "":
		return fmt.Errorf("cluster name and endpoint are required")
	}
	return nil
}

// FailurePolicy decides what GenerateWorkers does after a failed node.
type FailurePolicy string

// Failure policies.
const (
	// FailurePolicyAbort stops at the first failing node.
	FailurePolicyAbort FailurePolicy = "abort"
	// FailurePolicyContinue generates every node and reports all failures at the end.
	FailurePolicyContinue FailurePolicy = "continue"
)

// ParseFailurePolicy parses a policy name; empty means abort.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", FailurePolicyAbort:
		return FailurePolicyAbort, nil
	case FailurePolicyContinue:
		return FailurePolicyContinue, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (expected %s or %s)", s, FailurePolicyAbort, FailurePolicyContinue)
}

// Generator drives talosctl gen config.
type Generator struct {
	Runner Runner
	Binary string
}

// NewGenerator returns a generator running the talosctl binary on PATH.
func NewGenerator() *Generator {
	return &Generator{Runner: ExecRunner{}, Binary: DefaultBinary}
}

// Generate runs one invocation. A non-zero exit yields an error wrapping
// ErrExternalToolFailure that carries the tool output.
func (g *Generator) Generate(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return fmt.Errorf("invalid %s request: %w", req.Target, err)
	}

	out, err := g.Runner.Run(ctx, g.binary(), req.Args()...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: talosctl gen config --output-types %s (%s): %v%s",
			ErrExternalToolFailure, req.Target, req.OutputPath, err, formatOutput(out))
	}
	return nil
}

// GenerateWorkers runs one invocation per request. onDone, when set, is
// called after every invocation with its result.
func (g *Generator) GenerateWorkers(ctx context.Context, reqs []Request, policy FailurePolicy, onDone func(Request, error)) error {
	var result *multierror.Error
	for _, req := range reqs {
		err := g.Generate(ctx, req)
		if onDone != nil {
			onDone(req, err)
		}
		if err == nil {
			continue
		}
		if policy != FailurePolicyContinue || errors.Is(err, context.Canceled) {
			return err
		}
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (g *Generator) binary() string {
	if g.Binary == "" {
		return DefaultBinary
	}
	return g.Binary
}

func formatOutput(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	return "\n" + out
}

// FollowUpNode identifies a generated worker config for FollowUpCommands.
type FollowUpNode struct {
	PublicIP   string
	ConfigFile string
}

// FollowUpCommands returns the validate and apply-config commands an
// operator runs per node after generation. They are printed, not executed.
func FollowUpCommands(talosconfig string, nodes []FollowUpNode) []string {
	cmds := make([]string, 0, 2*len(nodes))
	for _, n := range nodes {
		cmds = append(cmds,
			fmt.Sprintf("talosctl validate --config %s --mode metal", n.ConfigFile),
			fmt.Sprintf("talosctl apply-config --talosconfig %s --nodes %s -e %s --file %s --insecure",
				talosconfig, n.PublicIP, n.PublicIP, n.ConfigFile),
		)
	}
	return cmds
}
