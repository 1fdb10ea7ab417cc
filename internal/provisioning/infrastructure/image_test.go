package infrastructure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hcloudplatform "github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/platform/talos"
)

type recordingRunner struct {
	name string
	args []string
	env  []string
	err  error
	run  func()
}

func (r *recordingRunner) RunEnv(_ context.Context, env []string, name string, args ...string) (string, error) {
	r.name = name
	r.args = args
	r.env = env
	if r.run != nil {
		r.run()
	}
	return "upload output", r.err
}

const testSchematic = "376567988ad370138ad8b2698212367b8edcb69b5fd68c80be1f2ec7d603b4ba"

func TestImageUploader_Args(t *testing.T) {
	t.Parallel()
	u := &ImageUploader{Token: "secret"}

	assert.Equal(t, []string{
		"run", "--rm", "-e", "HCLOUD_TOKEN",
		"ghcr.io/apricote/hcloud-upload-image:latest",
		"upload",
		"--image-url", "https://factory.example/image.raw.xz",
		"--architecture", "x86",
		"--compression", "xz",
		"--labels", "talhybrid/image=abc-v1.10.3",
	}, u.Args("https://factory.example/image.raw.xz", "abc-v1.10.3"))
}

func TestImageResource_UploadsAndPersists(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testDescriptor)
	label := talos.SnapshotLabel(testSchematic, "v1.10.3")

	var snapshots []*hcloud.Image
	client := &hcloudplatform.MockClient{
		ListSnapshotsFunc: func(_ context.Context, selector string) ([]*hcloud.Image, error) {
			assert.Equal(t, "talhybrid/image="+label, selector)
			return snapshots, nil
		},
	}
	runner := &recordingRunner{run: func() {
		snapshots = append(snapshots, &hcloud.Image{ID: 424242, Description: "talos"})
	}}
	uploader := &ImageUploader{Runner: runner, Token: "secret"}
	factory := talos.NewFactoryClient("https://factory.talos.dev", nil)

	r, err := NewImageResource(client, uploader, factory, env.config)
	require.NoError(t, err)

	res, err := Reconcile[*hcloud.Image](env.ctx, r)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, "docker", runner.name)
	assert.Equal(t, []string{"HCLOUD_TOKEN=secret"}, runner.env)
	for _, arg := range runner.args {
		assert.NotContains(t, arg, "secret", "token stays out of argv")
	}
	assert.Contains(t, runner.args, "https://factory.talos.dev/image/"+testSchematic+"/v1.10.3/hcloud-amd64.raw.xz")
	assert.Equal(t, int64(424242), env.ctx.Descriptor().Hetzner.ImageID)

	runner.name = ""
	res, err = Reconcile[*hcloud.Image](env.ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Empty(t, runner.name)
}

func TestImageResource_UploadFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testDescriptor)

	runner := &recordingRunner{err: errors.New("exit status 1")}
	r, err := NewImageResource(&hcloudplatform.MockClient{}, &ImageUploader{Runner: runner}, talos.NewFactoryClient("", nil), env.config)
	require.NoError(t, err)

	_, err = Reconcile[*hcloud.Image](env.ctx, r)
	require.ErrorIs(t, err, ErrResourceCreateFailure)
	assert.Contains(t, err.Error(), "upload output")
}

func TestImageResource_SnapshotMissingAfterUpload(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, testDescriptor)

	r, err := NewImageResource(&hcloudplatform.MockClient{}, &ImageUploader{Runner: &recordingRunner{}}, talos.NewFactoryClient("", nil), env.config)
	require.NoError(t, err)

	_, err = Reconcile[*hcloud.Image](env.ctx, r)
	require.ErrorIs(t, err, ErrResourceCreateFailure)
	assert.Contains(t, err.Error(), "not found")
}

func TestImageResource_RequiresSchematic(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, strings.Replace(testDescriptor, "schematicId: "+testSchematic, "schematicId: null", 1))

	_, err := NewImageResource(&hcloudplatform.MockClient{}, &ImageUploader{}, talos.NewFactoryClient("", nil), env.config)
	require.ErrorIs(t, err, ErrMissingDependency)
}
