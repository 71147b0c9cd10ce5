package netif

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstIPv4_Loopback(t *testing.T) {
	lo := loopbackInterface(t)

	ip, err := FirstIPv4(lo)
	require.NoError(t, err)

	parsed := net.ParseIP(ip)
	require.NotNil(t, parsed)
	assert.NotNil(t, parsed.To4())
	assert.True(t, parsed.IsLoopback())
}

func TestFirstIPv4_UnknownInterface(t *testing.T) {
	_, err := FirstIPv4("netdiag-does-not-exist0")
	assert.Error(t, err)
}

// loopbackInterface finds the system loopback interface name, skipping
// the test on hosts without one.
func loopbackInterface(t *testing.T) string {
	t.Helper()

	ifaces, err := net.Interfaces()
	require.NoError(t, err)

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.To4() != nil {
				return iface.Name
			}
		}
	}

	t.Skip("no loopback interface with an IPv4 address")
	return ""
}
