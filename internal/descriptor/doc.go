// Package descriptor updates single scalar fields of the cluster descriptor
// in place without reformatting the rest of the file.
//
// The descriptor is hand-authored YAML with inline comments. Round-tripping
// it through a YAML encoder would drop comments and reorder keys, so fields
// are patched textually: one anchored line match per key, value segment
// replaced, everything else kept byte for byte. [Store] adds the atomic
// write and reload around [SetField].
package descriptor
