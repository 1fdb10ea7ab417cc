// Package handlers implements the logic behind each CLI command.
//
// Clients and external tools are created through package-level factory
// variables so tests can replace them.
package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/descriptor"
	"github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/platform/robot"
	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/util/prerequisites"
)

// Options are the global flags shared by all commands.
type Options struct {
	ConfigDir     string
	TemplateDir   string
	EnvFile       string
	MetricsFile   string
	FailurePolicy string
}

// Paths resolves the configured folders.
func (o Options) Paths() config.Paths {
	return config.NewPaths(o.ConfigDir, o.TemplateDir)
}

// Factory function variables - can be replaced in tests.
var (
	// loadCredentials resolves API secrets from the environment and env file.
	loadCredentials = config.LoadCredentials

	// newObserver creates the operator-facing output sink.
	newObserver = func() provisioning.Observer {
		return provisioning.NewConsoleObserver()
	}

	// newInfraClient creates a Hetzner Cloud client.
	newInfraClient = func(token string, timeouts *config.Timeouts) hcloud.InfrastructureManager {
		return hcloud.NewRealClient(token, hcloud.WithTimeouts(timeouts))
	}

	// newRobotClient creates a Hetzner Robot webservice client.
	newRobotClient = func(user, password string, timeouts *config.Timeouts) robot.API {
		return robot.NewClient(user, password, robot.WithTimeout(timeouts.HTTP))
	}

	// newFactoryClient creates a Talos image factory client.
	newFactoryClient = func() *talos.FactoryClient {
		return talos.NewFactoryClient(talos.DefaultFactoryURL, nil)
	}

	// requireTools fails when an external tool is missing from PATH.
	requireTools = prerequisites.Require
)

// newRunContext loads credentials and the descriptor for one run.
func newRunContext(ctx context.Context, opts Options) (*provisioning.Context, error) {
	creds, err := loadCredentials(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	paths := opts.Paths()
	store, err := descriptor.Open(paths.Config.ClusterConfigFile())
	if err != nil {
		return nil, err
	}

	pctx := provisioning.NewContext(ctx, paths, store, creds)
	pctx.Observer = newObserver()
	return pctx, nil
}

// runPhases executes phases and writes the metrics textfile, also after
// a failure.
func runPhases(pctx *provisioning.Context, opts Options, phases []provisioning.Phase) error {
	err := provisioning.RunPhases(pctx, phases)

	if opts.MetricsFile != "" {
		if werr := pctx.Metrics.WriteTextfile(opts.MetricsFile); werr != nil {
			pctx.Observer.Warnf("failed to write metrics to %s: %v", opts.MetricsFile, werr)
		}
	}
	if s, ok := pctx.Observer.(interface{ Sync() }); ok {
		s.Sync()
	}
	return err
}

// cloudClient returns a Hetzner Cloud client for the run credentials.
func cloudClient(pctx *provisioning.Context) (hcloud.InfrastructureManager, error) {
	if err := pctx.Credentials.RequireHCloud(); err != nil {
		return nil, err
	}
	return newInfraClient(pctx.Credentials.HCloudToken, pctx.Timeouts), nil
}

// vswitchClient returns a Robot client for the run credentials.
func vswitchClient(pctx *provisioning.Context) (robot.API, error) {
	if err := pctx.Credentials.RequireRobot(); err != nil {
		return nil, err
	}
	return newRobotClient(pctx.Credentials.RobotUser, pctx.Credentials.RobotPassword, pctx.Timeouts), nil
}

func failurePolicy(opts Options) (talos.FailurePolicy, error) {
	policy, err := talos.ParseFailurePolicy(opts.FailurePolicy)
	if err != nil {
		return "", fmt.Errorf("invalid --failure-policy: %w", err)
	}
	return policy, nil
}
