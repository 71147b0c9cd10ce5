// Package netif resolves local network interface addresses.
package netif

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoIPv4Address is returned when the named interface carries no IPv4 address
var ErrNoIPv4Address = errors.New("interface has no IPv4 address")

// FirstIPv4 returns the first IPv4 address assigned to the named
// interface. The load generator binds to this address when no explicit
// bind address is configured.
func FirstIPv4(name string) (string, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return "", fmt.Errorf("failed to look up interface %q: %w", name, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return "", fmt.Errorf("failed to list addresses for %q: %w", name, err)
	}

	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoIPv4Address, name)
}
