package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/provisioning"
)

// Schematic submits talos/schematic.yaml to the image factory and stores
// the returned ID in the descriptor.
func Schematic(ctx context.Context, opts Options) error {
	pctx, err := newRunContext(ctx, opts)
	if err != nil {
		return err
	}

	phase := provisioning.PhaseFunc{PhaseName: "schematic", Fn: submitSchematic}
	return runPhases(pctx, opts, []provisioning.Phase{phase})
}

func submitSchematic(pctx *provisioning.Context) error {
	path := pctx.Paths.Config.SchematicFile()
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schematic: %w", err)
	}

	id, err := newFactoryClient().SubmitSchematic(pctx, data)
	if err != nil {
		return err
	}

	if current := pctx.Descriptor().Talos.SchematicID; current == id {
		provisioning.LogResourceExists(pctx.Observer, "schematic", "schematic", path, id)
		return nil
	}

	provisioning.LogResourceCreated(pctx.Observer, "schematic", "schematic", path, id)
	if err := pctx.Store.Set(config.FieldSchematicID, id); err != nil {
		return fmt.Errorf("failed to persist schematic ID: %w", err)
	}
	provisioning.LogResourcePersisted(pctx.Observer, "schematic", config.FieldSchematicID, id)
	return nil
}
