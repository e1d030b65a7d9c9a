package ftclient

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Option is a functional option for configuring a session.
type Option func(*Session) error

// WithTimeout bounds every blocking step: the control dial, each control
// read and write, the wait for the data connection and each data read.
// A zero timeout waits forever.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) error {
		if timeout < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
		s.timeout = timeout
		return nil
	}
}

// WithLogger enables debug logging using the provided logger.
// State transitions, commands and bind attempts are logged at debug level.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	s, _ := ftclient.NewSession(server, 30022, req, ftclient.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithDialer sets the dialer used for the control connection.
// *net.Dialer can be used to pick a source address or keep-alive settings.
func WithDialer(d Dialer) Option {
	return func(s *Session) error {
		if d == nil {
			return fmt.Errorf("dialer must not be nil")
		}
		s.dialer = d
		return nil
	}
}

// WithOutput sets where the banner, the listing and the server's status
// lines are written. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) error {
		if w == nil {
			return fmt.Errorf("output must not be nil")
		}
		s.out = w
		return nil
	}
}

// WithDestDir sets the directory retrieved files are written to. The default
// is the working directory.
func WithDestDir(dir string) Option {
	return func(s *Session) error {
		if dir == "" {
			return fmt.Errorf("destination directory must not be empty")
		}
		s.destDir = dir
		return nil
	}
}

// WithDataHost sets the local address the data listener binds to and
// advertises to the server. By default this is the local address of the
// control connection.
func WithDataHost(host string) Option {
	return func(s *Session) error {
		s.dataHost = host
		return nil
	}
}

// WithBindPolicy sets the policy consulted when the data port is busy,
// privileged or not permitted. The default, DenyPolicy, never retries, so
// without this option any conflict ends Run with ErrTerminatedByOperator
// although nobody was asked.
//
// Example:
//
//	ftclient.WithBindPolicy(ftclient.PromptPolicy(os.Stdin, os.Stdout))
func WithBindPolicy(p BindPolicy) Option {
	return func(s *Session) error {
		if p == nil {
			return fmt.Errorf("bind policy must not be nil")
		}
		s.bindPolicy = p
		return nil
	}
}

// WithBandwidthLimit caps how fast the data channel is read, in bytes per
// second. Zero means unlimited.
func WithBandwidthLimit(bytesPerSecond int64) Option {
	return func(s *Session) error {
		if bytesPerSecond < 0 {
			return fmt.Errorf("bandwidth limit must not be negative")
		}
		s.bandwidthLimit = bytesPerSecond
		return nil
	}
}

// WithProgress sets a callback receiving the number of bytes written to the
// destination file so far.
func WithProgress(fn func(bytesTransferred int64)) Option {
	return func(s *Session) error {
		s.progress = fn
		return nil
	}
}

// WithStateFunc sets a callback invoked on every state transition.
func WithStateFunc(fn func(State)) Option {
	return func(s *Session) error {
		s.onState = fn
		return nil
	}
}
