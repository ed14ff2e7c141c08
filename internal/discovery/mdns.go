package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/aiservice/poseul/internal/logging"
)

const (
	// ServiceType is the mDNS service type poseul backends advertise
	ServiceType = "_poseul._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for backend discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the port the backend listens on unless told otherwise
	DefaultPort = 5000
)

// Scanner handles mDNS backend discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for the scanner's timeout and returns every backend that
// answered, sorted by instance name.
func (s *Scanner) Scan(ctx context.Context) ([]*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	found := make(map[string]*Backend)
	err := s.browse(ctx, func(b *Backend) bool {
		if _, seen := found[b.Instance]; !seen {
			logging.Debug("Backend discovered",
				zap.String("instance", b.Instance),
				zap.String("url", b.BaseURL()),
			)
		}
		found[b.Instance] = b
		return true
	})
	if err != nil {
		return nil, err
	}

	backends := make([]*Backend, 0, len(found))
	for _, b := range found {
		backends = append(backends, b)
	}
	sort.Slice(backends, func(i, j int) bool {
		return backends[i].Instance < backends[j].Instance
	})
	return backends, nil
}

// WaitFor returns the backend with the given instance name as soon as it
// answers, or an error if it does not within the timeout.
func (s *Scanner) WaitFor(ctx context.Context, instance string) (*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var match *Backend
	err := s.browse(ctx, func(b *Backend) bool {
		if b.Instance == instance {
			match = b
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("backend %q not found within %s", instance, s.Timeout)
	}
	return match, nil
}

// browse feeds parsed backends to visit until ctx ends or visit returns
// false. It returns once the collector goroutine has stopped.
func (s *Scanner) browse(ctx context.Context, visit func(*Backend) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 16)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				b := parseServiceEntry(entry)
				if b == nil {
					continue
				}
				if !visit(b) {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		cancel()
		<-collected
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-collected
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Backend.
// Returns nil if the entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Backend {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Backend{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Announcement is a running mDNS registration
type Announcement struct {
	server *zeroconf.Server
}

// Announce advertises a backend listening on port until Shutdown is called
func Announce(instance string, port int, metadata map[string]string) (*Announcement, error) {
	text := make([]string, 0, len(metadata))
	for k, v := range metadata {
		text = append(text, k+"="+v)
	}
	sort.Strings(text)

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, text, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Announcing backend via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Announcement{server: server}, nil
}

// Shutdown withdraws the announcement
func (a *Announcement) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}
