package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/typetune/internal/protocol"
	"go.uber.org/zap"
)

const dialTimeout = 3 * time.Second

// NetworkStdio is the Endpoint network for a host that spawned the panel
// and talks to it over the panel's stdin and stdout.
const NetworkStdio = "stdio"

// Endpoint is a parsed host address.
type Endpoint struct {
	Network string // "unix", "tcp" or "stdio"
	Address string
}

func (e Endpoint) String() string {
	switch e.Network {
	case NetworkStdio:
		return NetworkStdio
	case "unix":
		return "unix://" + e.Address
	}
	return e.Network + "://" + e.Address
}

// ParseEndpoint accepts stdio, unix:///path/to/sock, unix:relative.sock,
// tcp://host:port and bare host:port. A leading ~ in unix paths is
// expanded.
func ParseEndpoint(addr string) (Endpoint, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return Endpoint{}, fmt.Errorf("host address is empty")
	}
	switch {
	case strings.EqualFold(trimmed, NetworkStdio), strings.EqualFold(trimmed, "stdio://"):
		return Endpoint{Network: NetworkStdio}, nil
	case strings.HasPrefix(trimmed, "unix://"):
		return unixEndpoint(strings.TrimPrefix(trimmed, "unix://"))
	case strings.HasPrefix(trimmed, "unix:"):
		return unixEndpoint(strings.TrimPrefix(trimmed, "unix:"))
	case strings.HasPrefix(trimmed, "tcp://"):
		return tcpEndpoint(strings.TrimPrefix(trimmed, "tcp://"))
	case strings.Contains(trimmed, "://"):
		return Endpoint{}, fmt.Errorf("unsupported host address scheme in %q", addr)
	default:
		return tcpEndpoint(trimmed)
	}
}

func unixEndpoint(path string) (Endpoint, error) {
	if path == "" {
		return Endpoint{}, fmt.Errorf("unix socket path is empty")
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Endpoint{}, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return Endpoint{Network: "unix", Address: path}, nil
}

func tcpEndpoint(hostport string) (Endpoint, error) {
	if _, _, err := net.SplitHostPort(hostport); err != nil {
		return Endpoint{}, fmt.Errorf("parse host address %q: %w", hostport, err)
	}
	return Endpoint{Network: "tcp", Address: hostport}, nil
}

// Dial connects to the host and wraps the connection in a Bridge. For
// stdio the bridge owns os.Stdin and os.Stdout; the caller must not draw
// on stdout.
func Dial(ctx context.Context, addr string, opts ...Option) (*Bridge, error) {
	ep, err := ParseEndpoint(addr)
	if err != nil {
		return nil, err
	}
	if ep.Network == NetworkStdio {
		return New(Stdio(os.Stdin, os.Stdout), opts...), nil
	}
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, ep.Network, ep.Address)
	if err != nil {
		return nil, fmt.Errorf("dial host %s: %w", ep, err)
	}
	return New(conn, opts...), nil
}

// Stdio joins a reader and a writer into the stream a Bridge expects.
// Close closes both.
func Stdio(in io.ReadCloser, out io.WriteCloser) io.ReadWriteCloser {
	return &stdioConn{in: in, out: out}
}

type stdioConn struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (c *stdioConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *stdioConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c *stdioConn) Close() error {
	return errors.Join(c.in.Close(), c.out.Close())
}

func outboundFields(msg protocol.Outbound) []zap.Field {
	switch v := msg.(type) {
	case protocol.ExportCode:
		return []zap.Field{
			zap.String("nodeId", v.NodeID),
			zap.String("format", string(v.Format)),
			zap.String("requestId", v.RequestID),
		}
	case protocol.UpdateSettings:
		keys := v.Settings.Keys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = string(k)
		}
		return []zap.Field{zap.Strings("keys", names)}
	default:
		return nil
	}
}
