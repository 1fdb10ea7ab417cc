package handlers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/platform/robot"
	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/util/prerequisites"
)

const testDescriptor = `cluster:
  name: demo
  endpoint: https://10.12.1.10:6443
  networking:
    private-node-cidr: 10.12.0.0/16
    subnet-virtual: 10.12.1.0/24
    subnet-metal: 10.12.2.0/24
talos:
  version: v1.10.3
  schematicId: 376567988ad370138ad8b2698212367b8edcb69b5fd68c80be1f2ec7d603b4ba
hetzner:
  hcloud-zone: eu-central
  hcloud-network-id: null    # set after 'net'
  hcloud-image-id: null      # set after 'image'
  robot-vswitch-id: null     # set after 'vswitch'
  robot-vlan-tag: 4000
  cp-lb-ip: null             # set after 'lb'
`

// saveAndRestoreFactories saves and restores every factory variable.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()

	origLoadCredentials := loadCredentials
	origNewObserver := newObserver
	origNewInfraClient := newInfraClient
	origNewRobotClient := newRobotClient
	origNewFactoryClient := newFactoryClient
	origRequireTools := requireTools
	origNewToolRunner := newToolRunner
	origNewPipeline := newPipeline
	origNewRemoteExecutor := newRemoteExecutor
	origNewBackupStore := newBackupStore
	origRunWizard := runWizard
	origIsTerminal := isTerminal
	origGetOrGenerateSecrets := getOrGenerateSecrets

	t.Cleanup(func() {
		loadCredentials = origLoadCredentials
		newObserver = origNewObserver
		newInfraClient = origNewInfraClient
		newRobotClient = origNewRobotClient
		newFactoryClient = origNewFactoryClient
		requireTools = origRequireTools
		newToolRunner = origNewToolRunner
		newPipeline = origNewPipeline
		newRemoteExecutor = origNewRemoteExecutor
		newBackupStore = origNewBackupStore
		runWizard = origRunWizard
		isTerminal = origIsTerminal
		getOrGenerateSecrets = origGetOrGenerateSecrets
	})
}

type harness struct {
	opts  Options
	out   *bytes.Buffer
	creds *config.Credentials
}

// newHarness writes testDescriptor into a fresh config folder and routes
// output and credentials through the returned harness.
func newHarness(t *testing.T) *harness {
	t.Helper()
	saveAndRestoreFactories(t)

	root := t.TempDir()
	h := &harness{
		opts: Options{
			ConfigDir:   filepath.Join(root, "config"),
			TemplateDir: filepath.Join(root, "templates"),
		},
		out: &bytes.Buffer{},
		creds: &config.Credentials{
			HCloudToken:   "token",
			RobotUser:     "robot",
			RobotPassword: "secret",
		},
	}
	h.write(t, h.opts.Paths().Config.ClusterConfigFile(), testDescriptor)

	loadCredentials = func(string) (*config.Credentials, error) { return h.creds, nil }
	newObserver = func() provisioning.Observer { return provisioning.NewWriterObserver(h.out, false) }
	requireTools = func(...prerequisites.Tool) error { return nil }
	return h
}

func (h *harness) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (h *harness) descriptor(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.opts.Paths().Config.ClusterConfigFile())
	require.NoError(t, err)
	return string(data)
}

func (h *harness) useCloud(client hcloud.InfrastructureManager) {
	newInfraClient = func(string, *config.Timeouts) hcloud.InfrastructureManager { return client }
}

func (h *harness) useRobot(client robot.API) {
	newRobotClient = func(string, string, *config.Timeouts) robot.API { return client }
}

type fakeRobot struct {
	vswitches []robot.VSwitch
	created   int
	added     [][]string
}

func (f *fakeRobot) GetVSwitch(_ context.Context, id int64) (*robot.VSwitch, error) {
	for i := range f.vswitches {
		if f.vswitches[i].ID == id {
			return &f.vswitches[i], nil
		}
	}
	return nil, &robot.Error{Status: 404, Code: "NOT_FOUND"}
}

func (f *fakeRobot) AddServers(_ context.Context, _ int64, servers ...string) error {
	f.added = append(f.added, servers)
	return nil
}

func (f *fakeRobot) ListVSwitches(context.Context) ([]robot.VSwitch, error) {
	return f.vswitches, nil
}

func (f *fakeRobot) CreateVSwitch(_ context.Context, name string, vlan int) (*robot.VSwitch, error) {
	f.created++
	vs := robot.VSwitch{ID: 50000, Name: name, VLAN: vlan}
	f.vswitches = append(f.vswitches, vs)
	return &vs, nil
}

type toolCall struct {
	name string
	args []string
	env  []string
}

type recordingRunner struct {
	calls []toolCall
	err   error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, toolCall{name: name, args: args})
	return "", r.err
}

func (r *recordingRunner) RunEnv(_ context.Context, env []string, name string, args ...string) (string, error) {
	r.calls = append(r.calls, toolCall{name: name, args: args, env: env})
	return "", r.err
}

var (
	_ talos.Runner    = (*recordingRunner)(nil)
	_ talos.EnvRunner = (*recordingRunner)(nil)
)
