package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service under which servers announce themselves.
const ServiceType = "_reflections._tcp"

// Advertise announces a server listening on port to the local network.
// Call Shutdown on the result to withdraw it.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("server: getting hostname: %w", err)
	}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"Reflections"})
	if err != nil {
		return nil, fmt.Errorf("server: creating mDNS service: %w", err)
	}
	srv, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("server: starting mDNS responder: %w", err)
	}
	return srv, nil
}

// Discover looks for advertised servers for the given time and calls found
// with the address of each one.
func Discover(timeout time.Duration, found func(name, addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(e.Host, fmt.Sprintf("%s:%d", e.AddrV4, e.Port))
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("server: mDNS lookup: %w", err)
	}
	return nil
}
