package ftclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

// deadlineListener is implemented by *net.TCPListener.
type deadlineListener interface {
	SetDeadline(t time.Time) error
}

// acceptData waits for the server to connect back on ln and returns that
// connection. The listener is closed once a connection arrives, or on
// failure, so it serves exactly one data connection. The wait is bounded by
// timeout and ctx.
func acceptData(ctx context.Context, ln net.Listener, timeout time.Duration, logger *slog.Logger) (net.Conn, error) {
	defer ln.Close()

	if timeout > 0 {
		if dl, ok := ln.(deadlineListener); ok {
			if err := dl.SetDeadline(time.Now().Add(timeout)); err != nil {
				return nil, fmt.Errorf("failed to set accept deadline: %w", err)
			}
		}
	}

	// Accept does not take a context; closing the listener unblocks it.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	logger.Debug("waiting for data connection", "addr", ln.Addr().String())
	conn, err := ln.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("data connection not established: %w", ctxErr)
		}
		return nil, fmt.Errorf("data connection not established: %w", err)
	}
	logger.Debug("data connection accepted", "remote", conn.RemoteAddr().String())

	return withDeadlines(conn, timeout), nil
}

// readChunk returns the next chunk from r. io.EOF is returned only once no
// data is left; a chunk read together with another error is returned with it.
func readChunk(r io.Reader, buf []byte) ([]byte, error) {
	n, err := r.Read(buf)
	if n > 0 {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return buf[:n], err
	}
	if err == nil {
		return buf[:0], nil
	}
	return nil, err
}
