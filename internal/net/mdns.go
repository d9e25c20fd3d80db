// Package net connects viewers to a hosting session: a websocket hub and
// client, mDNS discovery and local address helpers.
package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service a host advertises.
const ServiceType = "_designboard._tcp"

// Advertise announces a host on port under service. Shut the returned
// server down to stop advertising.
func Advertise(service string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	info := []string{"DesignBoard"}
	svc, err := mdns.NewMDNSService(host, service, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse looks for hosts for up to timeout and returns the first address
// found, as host:port.
func Browse(ctx context.Context, service string, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-drained
	if err != nil {
		return "", fmt.Errorf("mDNS lookup: %w", err)
	}
	select {
	case addr := <-found:
		return addr, nil
	default:
		return "", fmt.Errorf("no %s host found", service)
	}
}
