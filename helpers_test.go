package ftclient

import (
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// freePort returns a loopback port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// occupyPort holds a loopback listener for the duration of the test.
func occupyPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

// chunkedReader returns its chunks one Read at a time.
type chunkedReader struct {
	chunks [][]byte
}

func newChunkedReader(chunks ...string) *chunkedReader {
	r := &chunkedReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// fakeServer implements the server side of the protocol for one session.
type fakeServer struct {
	listener net.Listener

	// banner is sent right after accepting the control connection
	banner string

	// files maps remote names to contents; listings are built from it
	files map[string][]byte

	// order fixes the listing order
	order []string

	// chunkSize splits payloads into separate writes, 0 sends them whole
	chunkSize int

	// connectBack can be cleared to simulate a server that never dials the
	// data connection
	connectBack bool

	mu      sync.Mutex
	address string
	command string
	started bool
	done    chan struct{}
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{
		listener:    ln,
		banner:      "hello there client",
		files:       make(map[string][]byte),
		connectBack: true,
		done:        make(chan struct{}),
	}
	t.Cleanup(s.stop)
	return s
}

func (s *fakeServer) addFile(name string, content []byte) {
	s.files[name] = content
	s.order = append(s.order, name)
}

func (s *fakeServer) endpoint() Endpoint {
	return Endpoint{Host: "127.0.0.1", Port: s.listener.Addr().(*net.TCPAddr).Port}
}

func (s *fakeServer) receivedAddress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

func (s *fakeServer) receivedCommand() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.command
}

// respond returns the data payload and the status lines for a command.
func (s *fakeServer) respond(cmd string) ([]byte, []string) {
	if cmd == "-l" {
		return []byte(strings.Join(s.order, " ")), []string{"directory listing sent"}
	}
	if name, ok := strings.CutPrefix(cmd, "-g "); ok {
		content, found := s.files[name]
		if !found {
			return nil, []string{"FILE NOT FOUND"}
		}
		return content, []string{"transfer of " + name + " complete", "closing connection"}
	}
	return nil, []string{"INVALID COMMAND"}
}

func (s *fakeServer) start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if s.banner != "" {
			if _, err := io.WriteString(conn, s.banner); err != nil {
				return
			}
		}

		buf := make([]byte, 512)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.address = string(buf[:n])
		s.mu.Unlock()

		if !s.connectBack {
			_, _ = io.Copy(io.Discard, conn)
			return
		}

		host, port, _ := strings.Cut(string(buf[:n]), " ")
		data, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
		if err != nil {
			return
		}

		n, err = conn.Read(buf)
		if err != nil {
			data.Close()
			return
		}
		cmd := string(buf[:n])
		s.mu.Lock()
		s.command = cmd
		s.mu.Unlock()

		payload, status := s.respond(cmd)
		for len(payload) > 0 {
			size := len(payload)
			if s.chunkSize > 0 && size > s.chunkSize {
				size = s.chunkSize
			}
			if _, err := data.Write(payload[:size]); err != nil {
				break
			}
			payload = payload[size:]
		}
		data.Close()

		for _, line := range status {
			if _, err := io.WriteString(conn, line+"\n"); err != nil {
				return
			}
		}
	}()
}

func (s *fakeServer) stop() {
	s.listener.Close()
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
	}
}
