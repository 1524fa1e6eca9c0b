package tsp

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"

	"github.com/gotmc/query"
)

// Default TCP transport timings.
const (
	DefaultDialTimeout = 3 * time.Second
)

// TCPTransport connects to an instrument's raw-socket LAN interface
// (port 5025 on the 2600 series). Lines are ASCII, newline terminated.
type TCPTransport struct {
	addr         string
	dialTimeout  time.Duration
	queryTimeout time.Duration

	conn   net.Conn
	reader *bufio.Reader
}

var _ Transport = (*TCPTransport)(nil)
var _ query.Querier = (*TCPTransport)(nil)

// NewTCPTransport creates a TCP transport for the given "host:port" address.
// A queryTimeout of zero falls back to DefaultQueryTimeout.
func NewTCPTransport(addr string, queryTimeout time.Duration) *TCPTransport {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &TCPTransport{
		addr:         addr,
		dialTimeout:  DefaultDialTimeout,
		queryTimeout: queryTimeout,
	}
}

// SetQueryTimeout sets the reply read timeout, taking effect on the next
// query. Non-positive values are ignored.
func (t *TCPTransport) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		t.queryTimeout = d
	}
}

// Connect dials the instrument.
func (t *TCPTransport) Connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return err
	}

	t.conn = conn
	t.reader = bufio.NewReader(conn)

	return nil
}

// WriteLine sends one newline-terminated command line.
func (t *TCPTransport) WriteLine(line string) error {
	if t.conn == nil {
		return ErrNotConnected
	}

	_, err := t.conn.Write([]byte(strings.TrimRight(line, "\r\n") + "\n"))

	return err
}

// Query sends one command line and reads back one reply line. The read is
// bounded by the transport's query timeout; on expiry the underlying net
// timeout error propagates unchanged.
func (t *TCPTransport) Query(cmd string) (string, error) {
	if t.conn == nil {
		return "", ErrNotConnected
	}

	if err := t.WriteLine(cmd); err != nil {
		return "", err
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(t.queryTimeout)); err != nil {
		return "", err
	}
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// Close tears down the connection.
func (t *TCPTransport) Close() error {
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	t.reader = nil

	return err
}
