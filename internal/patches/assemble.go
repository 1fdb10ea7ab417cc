// Package patches orders rendered config fragments into the patch list
// handed to talosctl.
//
// Patch application is positional: later patches override earlier ones
// field by field. The order is always global fragments, then role
// fragments, then the node override (workers only).
package patches

import (
	"fmt"
	"path/filepath"
)

// Target is a talosctl gen config output type.
type Target string

// Supported targets.
const (
	TargetControlPlane Target = "controlplane"
	TargetWorker       Target = "worker"
	TargetTalosconfig  Target = "talosconfig"
)

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	switch t {
	case TargetControlPlane, TargetWorker, TargetTalosconfig:
		return true
	}
	return false
}

// Reference points at one rendered fragment on disk.
type Reference struct {
	Path string
}

// Flag returns the talosctl file reference form of the patch.
func (r Reference) Flag() string {
	return "@" + r.Path
}

// Set is a folder of rendered fragments.
type Set struct {
	Dir   string
	Names []string
}

// References returns the set's fragments as references, preserving order.
func (s Set) References() []Reference {
	refs := make([]Reference, 0, len(s.Names))
	for _, name := range s.Names {
		refs = append(refs, Reference{Path: filepath.Join(s.Dir, name)})
	}
	return refs
}

// Assemble builds the ordered patch list for target. nodeOverride is only
// accepted for worker targets.
func Assemble(target Target, global, role Set, nodeOverride *Reference) ([]Reference, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown target %q", target)
	}
	if nodeOverride != nil && target != TargetWorker {
		return nil, fmt.Errorf("node override is only valid for %s targets, got %s", TargetWorker, target)
	}

	refs := make([]Reference, 0, len(global.Names)+len(role.Names)+1)
	refs = append(refs, global.References()...)
	refs = append(refs, role.References()...)
	if nodeOverride != nil {
		refs = append(refs, *nodeOverride)
	}
	return refs, nil
}

// Flags renders references as talosctl file references.
func Flags(refs []Reference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Flag()
	}
	return out
}
