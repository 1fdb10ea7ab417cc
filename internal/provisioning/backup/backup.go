// Package backup copies the run state (descriptor, node index, secrets
// and talosconfig) to object storage.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/imamik/talhybrid/internal/provisioning"
)

// Store is the object storage a backup is written to.
type Store interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, data []byte) error
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// timestampLayout names the per-run folder under the cluster prefix.
const timestampLayout = "20060102T150405Z"

// Phase uploads the state files under <cluster>/<timestamp>/.
type Phase struct {
	Store Store
	// Now is replaced in tests.
	Now func() time.Time

	keys []string
}

func (p *Phase) Name() string { return "backup" }

// Keys returns the object keys written by the last run.
func (p *Phase) Keys() []string { return p.keys }

// Provision implements provisioning.Phase. Missing optional files are
// skipped; the descriptor itself must exist.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	prefix := path.Join(ctx.Descriptor().Cluster.Name, now().UTC().Format(timestampLayout))

	if err := p.Store.EnsureBucket(ctx); err != nil {
		return err
	}

	cfg := ctx.Paths.Config
	files := []struct {
		path     string
		required bool
	}{
		{cfg.ClusterConfigFile(), true},
		{cfg.NodesIndexFile(), false},
		{cfg.SchematicFile(), false},
		{cfg.SecretsFile(), false},
		{cfg.TalosconfigFile(), false},
	}

	p.keys = nil
	for _, f := range files {
		// #nosec G304
		data, err := os.ReadFile(f.path)
		if errors.Is(err, os.ErrNotExist) && !f.required {
			ctx.Observer.Printf("Skipping %s (not present)", f.path)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.path, err)
		}

		rel, err := filepath.Rel(cfg.Root, f.path)
		if err != nil {
			rel = filepath.Base(f.path)
		}
		key := path.Join(prefix, filepath.ToSlash(rel))
		if err := p.Store.PutObject(ctx, key, data); err != nil {
			return err
		}
		provisioning.LogResourceCreated(ctx.Observer, "backup", "object", key, "-")
		p.keys = append(p.keys, key)
	}
	return nil
}

// Snapshots returns the backup timestamps stored for cluster, oldest first.
// Keys that do not follow <cluster>/<timestamp>/<file> are ignored.
func Snapshots(ctx context.Context, store Store, cluster string) ([]string, error) {
	keys, err := store.ListObjects(ctx, cluster+"/")
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var stamps []string
	for _, key := range keys {
		parts := strings.SplitN(strings.TrimPrefix(key, cluster+"/"), "/", 2)
		if len(parts) != 2 || seen[parts[0]] {
			continue
		}
		if _, err := time.Parse(timestampLayout, parts[0]); err != nil {
			continue
		}
		seen[parts[0]] = true
		stamps = append(stamps, parts[0])
	}
	sort.Strings(stamps)
	return stamps, nil
}
