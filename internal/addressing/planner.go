// Package addressing derives node identity and private addressing from a
// node ordinal and the cluster networking block.
//
// Derivation is pure: the same ordinal and CIDRs always produce the same
// facts, which is what keeps re-rendered configs stable across runs.
package addressing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"go4.org/netipx"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/util/naming"
)

// ReservedPrefixCount is the number of usable hosts at the low end of the
// worker subnet kept for non-worker use. Worker n gets host
// ReservedPrefixCount+n. Changing it renumbers every worker.
const ReservedPrefixCount = 99

// PublicPrefixLength is the prefix a node's public address is widened to.
const PublicPrefixLength = 29

// ErrAddressSpaceExhausted is returned when an ordinal maps past the last
// usable host of the worker subnet.
var ErrAddressSpaceExhausted = errors.New("address space exhausted")

// Facts are the derived addressing facts of one node.
type Facts struct {
	Ordinal       int
	NodeName      string
	PublicIP      netip.Addr
	PrivateIP     netip.Addr
	PublicNetwork netip.Prefix
	Gateway       netip.Addr
}

// Planner derives Facts for the nodes of one cluster.
type Planner struct {
	clusterName string
	workers     netip.Prefix
	gateway     netip.Addr
}

// NewPlanner parses the networking block once. The gateway is the first
// usable host of the controlplane (virtual) subnet and is shared by all nodes.
func NewPlanner(networking config.Networking, clusterName string) (*Planner, error) {
	_, virtual, metal, err := networking.Prefixes()
	if err != nil {
		return nil, err
	}
	gw, err := NthHost(virtual, 1)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	return &Planner{clusterName: clusterName, workers: metal, gateway: gw}, nil
}

// Gateway returns the shared gateway address.
func (p *Planner) Gateway() netip.Addr {
	return p.gateway
}

// Derive returns the facts for the node at ordinal with the given public address.
func (p *Planner) Derive(publicIP string, ordinal int) (Facts, error) {
	if ordinal < 1 {
		return Facts{}, fmt.Errorf("ordinal %d must be positive", ordinal)
	}

	pub, err := netip.ParseAddr(publicIP)
	if err != nil {
		return Facts{}, fmt.Errorf("invalid public address %q: %w", publicIP, err)
	}
	if !pub.Is4() {
		return Facts{}, fmt.Errorf("public address %s is not IPv4", pub)
	}

	private, err := NthHost(p.workers, ReservedPrefixCount+ordinal)
	if err != nil {
		return Facts{}, fmt.Errorf("node %d: %w", ordinal, err)
	}

	return Facts{
		Ordinal:       ordinal,
		NodeName:      naming.Node(p.clusterName, ordinal),
		PublicIP:      pub,
		PrivateIP:     private,
		PublicNetwork: netip.PrefixFrom(pub, PublicPrefixLength).Masked(),
		Gateway:       p.gateway,
	}, nil
}

// Derive is a convenience wrapper building a one-off Planner.
func Derive(networking config.Networking, clusterName, publicIP string, ordinal int) (Facts, error) {
	p, err := NewPlanner(networking, clusterName)
	if err != nil {
		return Facts{}, err
	}
	return p.Derive(publicIP, ordinal)
}

// UsableHosts returns the number of assignable host addresses in prefix.
// Network and broadcast addresses are excluded except for /31 and /32.
func UsableHosts(prefix netip.Prefix) uint64 {
	size := uint64(1) << (32 - prefix.Bits())
	if prefix.Bits() >= 31 {
		return size
	}
	return size - 2
}

// NthHost returns the n-th usable host of prefix, counting from 1.
func NthHost(prefix netip.Prefix, n int) (netip.Addr, error) {
	if !prefix.Addr().Is4() {
		return netip.Addr{}, fmt.Errorf("only IPv4 ranges are supported, got %s", prefix)
	}
	prefix = prefix.Masked()

	usable := UsableHosts(prefix)
	if n < 1 || uint64(n) > usable {
		return netip.Addr{}, fmt.Errorf("%w: host %d requested from %s which has %d usable hosts",
			ErrAddressSpaceExhausted, n, prefix, usable)
	}

	first := prefix.Addr()
	if prefix.Bits() < 31 {
		first = first.Next()
	}

	b := first.As4()
	v := binary.BigEndian.Uint32(b[:]) + uint32(n-1)
	binary.BigEndian.PutUint32(b[:], v)
	addr := netip.AddrFrom4(b)

	if addr.Compare(netipx.PrefixLastIP(prefix)) > 0 {
		return netip.Addr{}, fmt.Errorf("%w: %s is outside %s", ErrAddressSpaceExhausted, addr, prefix)
	}
	return addr, nil
}
