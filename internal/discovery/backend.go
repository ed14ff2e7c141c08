package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Backend is a poseul backend seen on the network
type Backend struct {
	// Instance is the advertised mDNS instance name (e.g., "poseul-sim")
	Instance string

	// Hostname is the mDNS hostname (e.g., "raspberrypi.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains the TXT record key/value pairs
	Metadata map[string]string

	// DiscoveredAt is when the backend answered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the backend
func (b *Backend) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Instance, b.Hostname, b.BaseURL())
}

// BaseURL returns the HTTP base URL for the backend
func (b *Backend) BaseURL() string {
	return "http://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Backend) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
