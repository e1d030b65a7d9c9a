package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/gonzalop/ftclient"
)

const usageLine = "usage: ftclient [flags] <server-host> <server-port> -l|-g <filename> <data-port>"

// errUsage is returned when the positional arguments do not form a request.
var errUsage = errors.New("missing or extra arguments")

// invocation is a parsed command line.
type invocation struct {
	server   ftclient.Endpoint
	dataPort int
	request  ftclient.Request

	destDir  string
	timeout  time.Duration
	retries  int
	limit    int64
	verbose  bool
	progress bool
}

// newFlagSet declares the optional flags. They must precede the positional
// arguments.
func newFlagSet(inv *invocation, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("ftclient", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&inv.destDir, "dir", ".", "directory retrieved files are written to")
	fs.DurationVar(&inv.timeout, "timeout", 30*time.Second, "timeout for each network operation (0 waits forever)")
	fs.IntVar(&inv.retries, "retries", -1, "retry a busy data port this many times without asking (default: ask)")
	fs.Int64Var(&inv.limit, "limit", 0, "bandwidth limit in bytes per second (0 is unlimited)")
	fs.BoolVar(&inv.verbose, "v", false, "enable debug logging on stderr")
	fs.BoolVar(&inv.progress, "progress", false, "report bytes received on stderr")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usageLine)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs validates the command line without touching the network.
func parseArgs(args []string, stderr io.Writer) (*invocation, error) {
	inv := &invocation{}
	fs := newFlagSet(inv, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if inv.limit < 0 {
		return nil, &ftclient.ConfigError{Field: "limit", Value: fmt.Sprint(inv.limit), Reason: "must not be negative"}
	}
	if inv.timeout < 0 {
		return nil, &ftclient.ConfigError{Field: "timeout", Value: inv.timeout.String(), Reason: "must not be negative"}
	}

	pos := fs.Args()
	if len(pos) < 4 {
		return nil, errUsage
	}

	inv.server.Host = pos[0]
	if inv.server.Host == "" {
		return nil, &ftclient.ConfigError{Field: "server host", Reason: "must not be empty"}
	}
	port, err := ftclient.ParsePort("server port", pos[1])
	if err != nil {
		return nil, err
	}
	inv.server.Port = port

	var dataArg string
	switch pos[2] {
	case "-l":
		if len(pos) != 4 {
			return nil, errUsage
		}
		inv.request = ftclient.NewListRequest()
		dataArg = pos[3]
	case "-g":
		if len(pos) != 5 {
			return nil, errUsage
		}
		if inv.request, err = ftclient.NewGetRequest(pos[3]); err != nil {
			return nil, err
		}
		dataArg = pos[4]
	default:
		return nil, &ftclient.ConfigError{Field: "command", Value: pos[2], Reason: "must be -l or -g"}
	}

	if inv.dataPort, err = ftclient.ParsePort("data port", dataArg); err != nil {
		return nil, err
	}
	return inv, nil
}
