// Package nodeindex maps stable node ordinals to public addresses.
//
// The index file is maintained by the operator and never written by
// talhybrid. Ordinals drive all address derivation, so the mapping must be
// injective in both directions.
package nodeindex

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownAddress is returned when an address has no ordinal.
	ErrUnknownAddress = errors.New("address not in node index")

	// ErrUnknownOrdinal is returned when an ordinal has no address.
	ErrUnknownOrdinal = errors.New("ordinal not in node index")
)

type indexFile struct {
	Index map[int]string `yaml:"index"`
}

// Registry is a read-only bidirectional ordinal/address mapping.
type Registry struct {
	byOrdinal map[int]netip.Addr
	byAddress map[netip.Addr]int
}

// Load reads the index file at path.
func Load(path string) (*Registry, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read node index: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from index file content.
func Parse(data []byte) (*Registry, error) {
	var f indexFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse node index: %w", err)
	}
	return New(f.Index)
}

// New validates entries and builds a registry from them.
func New(entries map[int]string) (*Registry, error) {
	r := &Registry{
		byOrdinal: make(map[int]netip.Addr, len(entries)),
		byAddress: make(map[netip.Addr]int, len(entries)),
	}

	ordinals := make([]int, 0, len(entries))
	for o := range entries {
		ordinals = append(ordinals, o)
	}
	sort.Ints(ordinals)

	for _, o := range ordinals {
		if o < 1 {
			return nil, fmt.Errorf("node index: ordinal %d must be positive", o)
		}
		addr, err := netip.ParseAddr(entries[o])
		if err != nil {
			return nil, fmt.Errorf("node index: ordinal %d: invalid address %q: %w", o, entries[o], err)
		}
		if prev, dup := r.byAddress[addr]; dup {
			return nil, fmt.Errorf("node index: address %s assigned to ordinals %d and %d", addr, prev, o)
		}
		r.byOrdinal[o] = addr
		r.byAddress[addr] = o
	}
	return r, nil
}

// OrdinalOf returns the ordinal assigned to address.
func (r *Registry) OrdinalOf(address string) (int, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an IP address", ErrUnknownAddress, address)
	}
	o, ok := r.byAddress[addr]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAddress, address)
	}
	return o, nil
}

// AddressOf returns the address assigned to ordinal.
func (r *Registry) AddressOf(ordinal int) (string, error) {
	addr, ok := r.byOrdinal[ordinal]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownOrdinal, ordinal)
	}
	return addr.String(), nil
}

// Ordinals returns all ordinals in ascending order.
func (r *Registry) Ordinals() []int {
	out := make([]int, 0, len(r.byOrdinal))
	for o := range r.byOrdinal {
		out = append(out, o)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.byOrdinal)
}
