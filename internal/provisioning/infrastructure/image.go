package infrastructure

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/talhybrid/internal/config"
	hcloudplatform "github.com/imamik/talhybrid/internal/platform/hcloud"
	"github.com/imamik/talhybrid/internal/platform/talos"
	"github.com/imamik/talhybrid/internal/util/labels"
)

// UploadImage is the container used to turn a factory disk image into a
// Hetzner Cloud snapshot.
const UploadImage = "ghcr.io/apricote/hcloud-upload-image:latest"

// ImageUploader uploads a factory image as a labeled snapshot.
type ImageUploader struct {
	Runner talos.EnvRunner
	Token  string
}

// Args returns the docker invocation uploading imageURL with label. The
// token is forwarded by name only; its value travels in the environment.
func (u *ImageUploader) Args(imageURL, label string) []string {
	return []string{
		"run", "--rm",
		"-e", config.EnvHCloudToken,
		UploadImage,
		"upload",
		"--image-url", imageURL,
		"--architecture", "x86",
		"--compression", "xz",
		"--labels", labels.KeyImage + "=" + label,
	}
}

// Upload runs the uploader and blocks until it exits.
func (u *ImageUploader) Upload(ctx context.Context, imageURL, label string) error {
	env := []string{config.EnvHCloudToken + "=" + u.Token}
	out, err := u.Runner.RunEnv(ctx, env, "docker", u.Args(imageURL, label)...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("image upload failed: %w: %s", err, out)
	}
	return nil
}

// FactoryURLs resolves image factory download URLs.
type FactoryURLs interface {
	ImageURL(schematicID, talosVersion, asset string) string
}

var _ FactoryURLs = (*talos.FactoryClient)(nil)

// ImageResource reconciles the Talos snapshot for the pinned schematic
// and version. Snapshots are found by the label derived from both, so a
// new schematic or version yields a new image.
type ImageResource struct {
	client    hcloudplatform.SnapshotManager
	uploader  *ImageUploader
	factory   FactoryURLs
	schematic string
	version   string
	label     string
}

// NewImageResource validates the descriptor inputs for the image kind.
func NewImageResource(client hcloudplatform.SnapshotManager, uploader *ImageUploader, factory FactoryURLs, d *config.Descriptor) (*ImageResource, error) {
	if d.Talos.SchematicID == "" {
		return nil, fmt.Errorf("%w: image needs %s (run schematic first)", ErrMissingDependency, config.FieldSchematicID)
	}
	if d.Talos.Version == "" {
		return nil, fmt.Errorf("%w: image needs talos.version", ErrMissingDependency)
	}
	return &ImageResource{
		client:    client,
		uploader:  uploader,
		factory:   factory,
		schematic: d.Talos.SchematicID,
		version:   d.Talos.Version,
		label:     talos.SnapshotLabel(d.Talos.SchematicID, d.Talos.Version),
	}, nil
}

func (r *ImageResource) Kind() string     { return "image" }
func (r *ImageResource) Desired() int     { return 1 }
func (r *ImageResource) Field() string    { return config.FieldImageID }
func (r *ImageResource) Selector() string { return labels.SelectorForImage(r.label) }

func (r *ImageResource) List(ctx context.Context) ([]*hcloud.Image, error) {
	return r.client.ListSnapshots(ctx, r.Selector())
}

// Create uploads the image and reads the resulting snapshot back, since
// the uploader does not report the snapshot ID.
func (r *ImageResource) Create(ctx context.Context, _ int) (*hcloud.Image, error) {
	url := r.factory.ImageURL(r.schematic, r.version, talos.AssetHCloudRaw)
	if err := r.uploader.Upload(ctx, url, r.label); err != nil {
		return nil, err
	}
	images, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("uploaded snapshot with label %s not found", r.label)
	}
	return images[0], nil
}

func (r *ImageResource) Describe(img *hcloud.Image) Record {
	name := img.Description
	if name == "" {
		name = img.Name
	}
	return Record{ID: img.ID, Name: name, Value: img.ID}
}
