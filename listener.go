package ftclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"syscall"
)

// maxBindAttempts bounds the retry loop to one pass over the unprivileged
// port range.
const maxBindAttempts = lastPort - privilegedPort

var errPortRange = errors.New("port out of range")

// portNegotiator binds the listening socket for the data channel.
type portNegotiator struct {
	// host is the local address to listen on; it is also the address
	// advertised to the server
	host string

	// policy decides whether to move on to the next port after a conflict
	policy BindPolicy

	lc     net.ListenConfig
	logger *slog.Logger
}

// openListener binds a TCP listener on host:preferred. A busy or privileged
// port is reported to the policy, and on approval the next port is tried.
// Errors other than "address in use" or "permission denied" are returned
// immediately. The returned port is always in 1025..65535.
func (p *portNegotiator) openListener(ctx context.Context, preferred int) (net.Listener, int, error) {
	port := preferred
	for range maxBindAttempts {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		var conflict *BindConflictError
		switch {
		case port <= privilegedPort:
			conflict = &BindConflictError{Port: port, Next: nextPort(port), Privileged: true}
		case port > lastPort:
			conflict = &BindConflictError{Port: port, Next: nextPort(port), Err: errPortRange}
		default:
			addr := net.JoinHostPort(p.host, strconv.Itoa(port))
			p.logger.Debug("binding data listener", "addr", addr)

			ln, err := p.lc.Listen(ctx, "tcp", addr)
			if err == nil {
				return ln, port, nil
			}
			if !isBindConflict(err) {
				return nil, 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			conflict = &BindConflictError{
				Port:   port,
				Next:   nextPort(port),
				Denied: errors.Is(err, os.ErrPermission),
				Err:    err,
			}
		}

		p.logger.Debug("data port conflict", "port", conflict.Port, "next", conflict.Next, "error", conflict.Err)
		if p.policy == nil || !p.policy(conflict) {
			return nil, 0, ErrTerminatedByOperator
		}
		port = conflict.Next
	}
	return nil, 0, fmt.Errorf("no data port available after %d attempts", maxBindAttempts)
}

// nextPort returns the candidate after port, wrapping back to the first
// unprivileged port past the ceiling.
func nextPort(port int) int {
	next := port + 1
	if next <= privilegedPort || next > lastPort {
		return firstPort
	}
	return next
}

// isBindConflict reports whether a listen error means the port itself is
// unusable, as opposed to the host or the network.
func isBindConflict(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE) || errors.Is(err, os.ErrPermission)
}
