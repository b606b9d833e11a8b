package app

import (
	"errors"
	"net"
)

// For mocking in tests
var netInterfaceAddrs = net.InterfaceAddrs

// LocalIP returns the IPv4 address of the interface carrying the default
// route, falling back to the first non-loopback IPv4 address. No packet is
// sent: connecting a UDP socket only selects a route.
func LocalIP() (string, error) {
	if conn, err := net.Dial("udp4", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsLoopback() && !addr.IP.IsUnspecified() {
			return addr.IP.String(), nil
		}
	}

	addrs, err := netInterfaceAddrs()
	if err != nil {
		return "", err
	}
	return firstLANAddress(addrs)
}

func firstLANAddress(addrs []net.Addr) (string, error) {
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		return ip.String(), nil
	}
	return "", errors.New("no non-loopback IPv4 address found")
}
