package config

import (
	"fmt"
	"net/netip"

	"go4.org/netipx"
)

// ParsePrefix parses an IPv4 CIDR and returns it masked to its network address.
func ParsePrefix(cidr string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	if !p.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("only IPv4 ranges are supported, got %s", cidr)
	}
	return p.Masked(), nil
}

// Prefixes returns the parsed networking ranges.
func (n Networking) Prefixes() (cluster, virtual, metal netip.Prefix, err error) {
	if cluster, err = ParsePrefix(n.PrivateNodeCIDR); err != nil {
		return cluster, virtual, metal, fmt.Errorf("private-node-cidr: %w", err)
	}
	if virtual, err = ParsePrefix(n.SubnetVirtual); err != nil {
		return cluster, virtual, metal, fmt.Errorf("subnet-virtual: %w", err)
	}
	if metal, err = ParsePrefix(n.SubnetMetal); err != nil {
		return cluster, virtual, metal, fmt.Errorf("subnet-metal: %w", err)
	}
	return cluster, virtual, metal, nil
}

// containsPrefix reports whether child lies entirely inside parent.
func containsPrefix(parent, child netip.Prefix) bool {
	var b netipx.IPSetBuilder
	b.AddPrefix(parent)
	set, err := b.IPSet()
	if err != nil {
		return false
	}
	return set.ContainsPrefix(child)
}
