package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(instance, host string, port int, v4 []net.IP, v6 []net.IP, text ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = text
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
		wantURL  string
	}{
		{
			name:     "simulator with IPv4",
			entry:    entry("poseul-sim", "devbox.local.", 5000, []net.IP{net.ParseIP("192.168.0.12")}, nil, "path=/", "version=1.0.0"),
			wantIP:   "192.168.0.12",
			wantPort: 5000,
			wantURL:  "http://192.168.0.12:5000",
		},
		{
			name:     "prefers IPv4 over IPv6",
			entry:    entry("pi", "pi.local.", 8080, []net.IP{net.ParseIP("10.0.0.5")}, []net.IP{net.ParseIP("fe80::1")}),
			wantIP:   "10.0.0.5",
			wantPort: 8080,
			wantURL:  "http://10.0.0.5:8080",
		},
		{
			name:     "IPv6 only",
			entry:    entry("v6", "v6.local.", 5000, nil, []net.IP{net.ParseIP("fd00::5")}),
			wantIP:   "fd00::5",
			wantPort: 5000,
			wantURL:  "http://[fd00::5]:5000",
		},
		{
			name:     "missing port defaults",
			entry:    entry("noport", "np.local.", 0, []net.IP{net.ParseIP("172.16.0.1")}, nil),
			wantIP:   "172.16.0.1",
			wantPort: DefaultPort,
			wantURL:  "http://172.16.0.1:5000",
		},
		{
			name:    "no address",
			entry:   entry("ghost", "ghost.local.", 5000, nil, nil),
			wantNil: true,
		},
		{
			name:    "no instance",
			entry:   entry("", "anon.local.", 5000, []net.IP{net.ParseIP("192.168.1.1")}, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseServiceEntry(tt.entry)
			if tt.wantNil {
				assert.Nil(t, b)
				return
			}
			require.NotNil(t, b)
			assert.Equal(t, tt.wantIP, b.IP)
			assert.Equal(t, tt.wantPort, b.Port)
			assert.Equal(t, tt.wantURL, b.BaseURL())
			assert.WithinDuration(t, time.Now(), b.DiscoveredAt, time.Minute)
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	b := parseServiceEntry(entry("poseul-sim", "h.local.", 5000, []net.IP{net.ParseIP("10.1.1.1")}, nil,
		"path=/", "version=1.0.0", "model_loaded=true", "flag", "eq=a=b"))
	require.NotNil(t, b)

	tests := map[string]string{
		"path":         "/",
		"version":      "1.0.0",
		"model_loaded": "true",
		"flag":         "",
		"eq":           "a=b",
		"missing":      "",
	}
	for key, want := range tests {
		assert.Equal(t, want, b.GetMetadata(key), key)
	}

	assert.Equal(t, "poseul-sim (h.local.) at http://10.1.1.1:5000", b.String())

	var empty Backend
	assert.Empty(t, empty.GetMetadata("x"))
}

func TestNewScanner(t *testing.T) {
	s := NewScanner()
	assert.Equal(t, DefaultScanTimeout, s.Timeout)
}
