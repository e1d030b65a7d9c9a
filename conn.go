package ftclient

import (
	"net"
	"time"
)

// deadlineConn pushes the read or write deadline forward before every
// operation, so the timeout bounds each blocking call rather than the whole
// session.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

// withDeadlines wraps conn when timeout is positive.
func withDeadlines(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &deadlineConn{Conn: conn, timeout: timeout}
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
