package ftclient

import (
	"net"
	"strconv"
)

const (
	// privilegedPort is the highest port that conventionally needs elevated
	// permission to bind.
	privilegedPort = 1024

	// firstPort is the lowest port a session will listen on or dial.
	firstPort = privilegedPort + 1

	// lastPort is the highest valid TCP port.
	lastPort = 65535
)

// Endpoint is a TCP host and port.
type Endpoint struct {
	Host string
	Port int
}

// String returns the endpoint in "host:port" form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Validate checks that the host is set and the port lies strictly between the
// privileged range and the 16-bit ceiling.
func (e Endpoint) Validate() error {
	if e.Host == "" {
		return &ConfigError{Field: "host", Reason: "must not be empty"}
	}
	if !validPort(e.Port) {
		return &ConfigError{Field: "port", Value: strconv.Itoa(e.Port), Reason: portRangeReason}
	}
	return nil
}

const portRangeReason = "must be between 1025 and 65535"

func validPort(port int) bool {
	return port > privilegedPort && port <= lastPort
}

// ParsePort parses a port number given on the command line. field names the
// argument in the returned error.
func ParsePort(field, s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ConfigError{Field: field, Value: s, Reason: "not a number"}
	}
	if !validPort(port) {
		return 0, &ConfigError{Field: field, Value: s, Reason: portRangeReason}
	}
	return port, nil
}
