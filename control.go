package ftclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
)

// bufferSize is the size of a single control or data read. The server reads
// commands the same way, so a command must fit in one buffer.
const bufferSize = 512

// Dialer dials the control connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// controlChannel owns the control connection.
type controlChannel struct {
	// raw is the dialed connection; conn wraps it with per-call deadlines
	raw  net.Conn
	conn net.Conn

	logger *slog.Logger
}

// dialControl connects to the server's control endpoint.
func dialControl(ctx context.Context, d Dialer, server Endpoint, timeout time.Duration, logger *slog.Logger) (*controlChannel, error) {
	addr := server.String()
	logger.Debug("connecting to control endpoint", "addr", addr)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}

	return &controlChannel{
		raw:    conn,
		conn:   withDeadlines(conn, timeout),
		logger: logger,
	}, nil
}

// localHost returns the IP the control connection uses on this machine. It is
// the address the server can reach us on.
func (c *controlChannel) localHost() (string, error) {
	host, _, err := net.SplitHostPort(c.raw.LocalAddr().String())
	if err != nil {
		return "", fmt.Errorf("failed to determine local address: %w", err)
	}
	return host, nil
}

// readBanner performs exactly one read of up to bufferSize bytes and returns
// it unparsed. A peer that closes before saying anything yields an empty
// banner.
func (c *controlChannel) readBanner() (string, error) {
	buf := make([]byte, bufferSize)
	n, err := c.conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read banner: %w", err)
	}
	banner := string(buf[:n])
	c.logger.Debug("control banner", "bytes", n)
	return banner, nil
}

// send writes text as is, with no length prefix and no terminator.
func (c *controlChannel) send(text string) error {
	if len(text) > bufferSize {
		return fmt.Errorf("command of %d bytes exceeds %d byte limit", len(text), bufferSize)
	}
	c.logger.Debug("control command", "cmd", text)
	if _, err := io.WriteString(c.conn, text); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// drainStatus relays the server's trailing status text to out, one line at a
// time, until the server closes the control connection. The only end of
// response marker is connection close.
func (c *controlChannel) drainStatus(out io.Writer) error {
	sc := bufio.NewScanner(bufio.NewReaderSize(c.conn, bufferSize))
	lines := 0
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines++
		c.logger.Debug("control status", "message", line)
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to relay status: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	c.logger.Debug("control channel closed by server", "status_lines", lines)
	return nil
}

// Close closes the control connection.
func (c *controlChannel) Close() error {
	return c.raw.Close()
}
