//go:build linux

package netinfo

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// PrimaryIPv4 returns the host's first global-scope IPv4 address.
func PrimaryIPv4() (string, error) {
	addrs, err := netlink.AddrList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", fmt.Errorf("list addresses: %w", err)
	}
	for _, addr := range addrs {
		if addr.Scope != int(netlink.SCOPE_UNIVERSE) {
			continue
		}
		if addr.IP == nil || !addr.IP.IsGlobalUnicast() {
			continue
		}
		return addr.IP.String(), nil
	}
	return "", ErrNoAddress
}

// DefaultLANCIDR returns the network CIDR of the interface carrying the
// default route, e.g. "192.168.1.0/24".
func DefaultLANCIDR() (string, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", fmt.Errorf("list routes: %w", err)
	}

	linkIndex := -1
	for _, route := range routes {
		if route.Dst == nil || route.Dst.IP.IsUnspecified() {
			linkIndex = route.LinkIndex
			break
		}
	}
	if linkIndex < 0 {
		return "", fmt.Errorf("no default route found")
	}

	link, err := netlink.LinkByIndex(linkIndex)
	if err != nil {
		return "", fmt.Errorf("resolve default-route link: %w", err)
	}
	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return "", fmt.Errorf("list addresses: %w", err)
	}
	for _, addr := range addrs {
		if addr.IPNet == nil || !addr.IP.IsGlobalUnicast() {
			continue
		}
		network := &net.IPNet{
			IP:   addr.IP.Mask(addr.IPNet.Mask),
			Mask: addr.IPNet.Mask,
		}
		return network.String(), nil
	}
	return "", ErrNoAddress
}
