package handlers

import (
	"context"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/platform/s3"
	"github.com/imamik/talhybrid/internal/provisioning"
	"github.com/imamik/talhybrid/internal/provisioning/backup"
)

// newBackupStore creates the object store client; replaced in tests.
var newBackupStore = func(ctx context.Context, settings config.S3Settings) (backup.Store, error) {
	client, err := s3.NewClient(ctx, settings)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Backup uploads the descriptor, node index, schematic and secrets to the
// configured S3 bucket. With list, it prints the stored backups instead.
func Backup(ctx context.Context, opts Options, list bool) error {
	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}
	if err := pctx.Credentials.RequireS3(); err != nil {
		return err
	}

	store, err := newBackupStore(ctx, pctx.Credentials.S3)
	if err != nil {
		return err
	}

	if list {
		return listBackups(pctx, store)
	}

	phase := &backup.Phase{Store: store}
	if err := runPhases(pctx, opts, []provisioning.Phase{phase}); err != nil {
		return err
	}
	pctx.Observer.Printf("Uploaded %d file(s)", len(phase.Keys()))
	return nil
}

func listBackups(pctx *provisioning.Context, store backup.Store) error {
	cluster := pctx.Descriptor().Cluster.Name
	stamps, err := backup.Snapshots(pctx, store, cluster)
	if err != nil {
		return err
	}
	if len(stamps) == 0 {
		pctx.Observer.Printf("No backups for %s", cluster)
		return nil
	}
	for _, stamp := range stamps {
		pctx.Observer.Printf("%s/%s", cluster, stamp)
	}
	return nil
}
