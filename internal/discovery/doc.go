// Package discovery finds poseul backends on the local network via mDNS.
//
// Backends advertise the "_poseul._tcp" service in the "local." domain.
// The TXT records carry free-form metadata such as "path=/" and
// "version=1.0.0". The simulator announces itself with Announce so the
// CLI can find it without a configured server URL:
//
//	scanner := discovery.NewScanner()
//	backends, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, b := range backends {
//	    fmt.Println(b.Instance, b.BaseURL())
//	}
package discovery
