// Command ftclient lists a server's directory or retrieves one file from it
// over the two-channel active-mode protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gonzalop/ftclient"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitTerminated = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		// The flag package already reported its own errors.
		if !isFlagError(err) {
			fmt.Fprintln(stderr, err)
			fmt.Fprintln(stderr, usageLine)
		}
		return exitUsage
	}

	level := slog.LevelWarn
	if inv.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	policy := ftclient.PromptPolicy(stdin, stdout)
	if inv.retries >= 0 {
		policy = ftclient.RetryPolicy(inv.retries)
	}

	opts := []ftclient.Option{
		ftclient.WithLogger(logger),
		ftclient.WithOutput(stdout),
		ftclient.WithDestDir(inv.destDir),
		ftclient.WithTimeout(inv.timeout),
		ftclient.WithBindPolicy(policy),
		ftclient.WithBandwidthLimit(inv.limit),
	}
	if inv.progress {
		opts = append(opts, ftclient.WithProgress(func(n int64) {
			fmt.Fprintf(stderr, "\rreceived %d bytes", n)
		}))
	}

	s, err := ftclient.NewSession(inv.server, inv.dataPort, inv.request, opts...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	res, err := s.Run(ctx)
	if inv.progress && res != nil && res.Bytes > 0 {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		return report(stderr, err)
	}

	if res.Action == ftclient.ActionGet {
		if res.Path == "" {
			fmt.Fprintf(stdout, "no data received for %s, nothing written\n", inv.request.Filename())
		} else {
			fmt.Fprintf(stdout, "saved %s (%d bytes)\n", res.Path, res.Bytes)
		}
	}
	return exitOK
}

// report prints a human-readable cause and picks the exit code.
func report(stderr io.Writer, err error) int {
	var (
		ce *ftclient.ConnectError
		te *ftclient.TransferError
	)
	switch {
	case errors.Is(err, ftclient.ErrTerminatedByOperator):
		fmt.Fprintln(stderr, "session terminated by operator")
		return exitTerminated
	case errors.As(err, &ce):
		fmt.Fprintf(stderr, "could not connect to server %s: %v\n", ce.Addr, ce.Err)
	case errors.As(err, &te):
		if te.Path != "" {
			fmt.Fprintf(stderr, "transfer failed, partial file kept at %s (%d bytes): %v\n", te.Path, te.Written, te.Err)
		} else {
			fmt.Fprintf(stderr, "transfer failed: %v\n", te.Err)
		}
	default:
		fmt.Fprintln(stderr, err)
	}
	return exitFailure
}

// isFlagError reports whether err came from flag parsing rather than from
// positional argument checks.
func isFlagError(err error) bool {
	var ce *ftclient.ConfigError
	return !errors.As(err, &ce) && !errors.Is(err, errUsage)
}
