package net

import (
	"log"
	"net"
)

// ProbeAddr is dialled over UDP to learn which interface routes outward.
// No packets are sent.
const ProbeAddr = "8.8.8.8:80"

// HostIP returns the IPv4 address peers should use to reach this host. The
// routed interface wins; offline hosts fall back to the first private
// interface address, then loopback.
func HostIP(probe string) string {
	if conn, err := net.Dial("udp", probe); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP.To4() != nil {
			return addr.IP.String()
		}
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.Printf("[HOST] Listing interfaces failed: %v", err)
		return "127.0.0.1"
	}
	var public string
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() || ipnet.IP.To4() == nil {
			continue
		}
		if ipnet.IP.IsPrivate() {
			return ipnet.IP.String()
		}
		if public == "" {
			public = ipnet.IP.String()
		}
	}
	if public != "" {
		return public
	}
	log.Println("[HOST] No LAN address found, share link uses loopback")
	return "127.0.0.1"
}
