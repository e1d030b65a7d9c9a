package ftclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gonzalop/ftclient/internal/ratelimit"
)

// Session is one request/response cycle with a server: one control
// connection, one data connection, one listing or file. A Session cannot be
// reused.
type Session struct {
	// server is the control endpoint
	server Endpoint

	// dataPort is the preferred local port for the data listener
	dataPort int

	// request is what the session asks the server for
	request Request

	// timeout bounds each blocking operation, zero waits forever
	timeout time.Duration

	// logger is used for debug logging
	logger *slog.Logger

	// dialer establishes the control connection
	dialer Dialer

	// out receives the banner, the listing and status lines
	out io.Writer

	// destDir is where retrieved files are created
	destDir string

	// dataHost overrides the address the data listener binds to
	dataHost string

	bindPolicy     BindPolicy
	bandwidthLimit int64
	progress       func(bytesTransferred int64)
	onState        func(State)

	// mu protects state and used
	mu    sync.Mutex
	state State
	used  bool

	// resources opened by Run, released by teardown
	control  *controlChannel
	listener net.Listener
	data     net.Conn
}

// Result describes a completed (or partially completed) cycle.
type Result struct {
	// Action is the request that was served
	Action Action

	// DataPort is the port the data listener was bound to
	DataPort int

	// Entries holds the names of a listing, in server order
	Entries []string

	// Path is the file a get wrote to, empty if nothing was written
	Path string

	// Bytes counts payload bytes written to Path for a get, or the bytes of
	// the entry names for a list
	Bytes int64
}

// NewSession prepares a session against the server's control endpoint that
// will listen for the data connection on dataPort (or the next free port, as
// the bind policy allows).
//
// Example:
//
//	s, err := ftclient.NewSession(ftclient.Endpoint{Host: "flip1", Port: 30021}, 30022,
//	    ftclient.NewListRequest(),
//	    ftclient.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := s.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
func NewSession(server Endpoint, dataPort int, req Request, options ...Option) (*Session, error) {
	if err := server.Validate(); err != nil {
		return nil, err
	}
	// Privileged ports are accepted here and negotiated away when binding.
	if dataPort < 1 || dataPort > lastPort {
		return nil, &ConfigError{Field: "data port", Value: strconv.Itoa(dataPort), Reason: portRangeReason}
	}
	if req.Action() == ActionGet && req.Filename() == "" {
		return nil, &ConfigError{Field: "filename", Reason: "required for get"}
	}

	s := &Session{
		server:     server,
		dataPort:   dataPort,
		request:    req,
		timeout:    30 * time.Second,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		dialer:     &net.Dialer{},
		out:        os.Stdout,
		destDir:    ".",
		bindPolicy: DenyPolicy,
	}

	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return s, nil
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()

	s.logger.Debug("session state", "from", prev, "to", st)
	if s.onState != nil {
		s.onState(st)
	}
}

// Run performs the request: connect, exchange the data address, accept the
// data connection, send the action, transfer, relay trailing status. Both
// connections are closed before Run returns, whatever happened.
//
// Cancelling ctx aborts whichever step is blocked. On a transfer failure the
// returned Result still reports what was received.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.used {
		s.mu.Unlock()
		return nil, ErrSessionUsed
	}
	s.used = true
	s.mu.Unlock()

	defer s.teardown()

	ctrl, err := dialControl(ctx, s.dialer, s.server, s.timeout, s.logger)
	if err != nil {
		return nil, err
	}
	s.control = ctrl
	defer context.AfterFunc(ctx, func() { ctrl.Close() })()
	s.setState(StateControlConnected)

	banner, err := ctrl.readBanner()
	if err != nil {
		return nil, withContext(ctx, err)
	}
	if err := s.relay(banner); err != nil {
		return nil, err
	}

	host := s.dataHost
	if host == "" {
		if host, err = ctrl.localHost(); err != nil {
			return nil, err
		}
	}

	pn := &portNegotiator{host: host, policy: s.bindPolicy, logger: s.logger}
	ln, port, err := pn.openListener(ctx, s.dataPort)
	if err != nil {
		return nil, err
	}
	s.listener = ln
	s.setState(StateDataListening)

	if err := ctrl.send(host + " " + strconv.Itoa(port)); err != nil {
		return nil, withContext(ctx, err)
	}
	s.setState(StateAddressSent)

	data, err := acceptData(ctx, ln, s.timeout, s.logger)
	s.listener = nil
	if err != nil {
		return nil, err
	}
	s.data = data
	defer context.AfterFunc(ctx, func() { data.Close() })()
	s.setState(StateDataConnected)

	if err := ctrl.send(s.request.Command()); err != nil {
		return nil, withContext(ctx, err)
	}
	s.setState(StateActionSent)

	s.setState(StateTransferring)
	x := &transferExecutor{
		out:      s.out,
		destDir:  s.destDir,
		progress: s.progress,
		logger:   s.logger,
	}
	limiter := ratelimit.New(s.bandwidthLimit)
	if limiter != nil {
		s.logger.Debug("data channel throttled", "bytes_per_second", limiter.Rate())
	}
	src := ratelimit.NewReader(data, limiter)
	res, err := x.execute(ctx, s.request, src)
	if res != nil {
		res.DataPort = port
	}
	if err != nil {
		return res, withContext(ctx, err)
	}

	if err := ctrl.drainStatus(s.out); err != nil {
		return res, withContext(ctx, err)
	}
	s.setState(StateStatusDrained)

	return res, nil
}

// relay shows server text to the operator as received.
func (s *Session) relay(text string) error {
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(s.out, text); err != nil {
		return fmt.Errorf("failed to relay banner: %w", err)
	}
	return nil
}

// teardown releases whatever Run opened and marks the session closed.
func (s *Session) teardown() {
	if s.data != nil {
		if err := s.data.Close(); err != nil {
			s.logger.Debug("closing data connection", "error", err)
		}
		s.data = nil
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Debug("closing data listener", "error", err)
		}
		s.listener = nil
	}
	if s.control != nil {
		if err := s.control.Close(); err != nil {
			s.logger.Debug("closing control connection", "error", err)
		}
		s.control = nil
	}
	s.setState(StateClosed)
}

// withContext attaches the context's error to err when the failure was
// caused by cancellation, so callers can test for it with errors.Is.
func withContext(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}
	return errors.Join(err, ctxErr)
}
