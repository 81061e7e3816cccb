// Package netutil provides TCP reachability probing for recovery checks.
package netutil

import (
	"context"
	"net"
	"strconv"
	"time"
)

// DefaultDialTimeout is the per-attempt dial timeout.
const DefaultDialTimeout = 2 * time.Second

// TCPProber checks whether a host accepts TCP connections on a fixed port.
// For Talos nodes the API port is open as soon as the machine has booted and
// configured its network, which makes it a usable liveness signal after an
// alias-driven reboot.
type TCPProber struct {
	Port        int
	DialTimeout time.Duration
}

// NewTCPProber creates a prober for the given port.
func NewTCPProber(port int, dialTimeout time.Duration) *TCPProber {
	if dialTimeout == 0 {
		dialTimeout = DefaultDialTimeout
	}
	return &TCPProber{Port: port, DialTimeout: dialTimeout}
}

// IsReachable reports whether ip accepts a TCP connection on the probe port
// within the dial timeout. Any failure, including context cancellation, is
// reported as unreachable.
func (p *TCPProber) IsReachable(ctx context.Context, ip string) bool {
	address := net.JoinHostPort(ip, strconv.Itoa(p.Port))

	dialer := net.Dialer{Timeout: p.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
