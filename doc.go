// Package ftclient implements the client side of a two-channel, active-mode
// file transfer protocol.
//
// # Overview
//
// A session uses two TCP connections:
//   - a control connection, dialed by the client, carrying commands and
//     human-readable status text
//   - a data connection, dialed back by the server to a port the client
//     listens on, carrying a directory listing or the raw bytes of one file
//
// One session performs exactly one request and then closes both channels.
//
// # Wire Protocol
//
// From the client's point of view a session runs like this:
//
//  1. connect to the server's control port
//  2. read the banner (at most 512 bytes) and show it
//  3. listen on the data port and send "<client-ip> <data-port>"
//  4. accept the server's data connection
//  5. send "-l" (list) or "-g <filename>" (get)
//  6. read the payload from the data connection until EOF
//  7. relay the status lines on the control connection until EOF
//
// Commands are written without any framing or terminator.
//
// # Basic Usage
//
//	req, err := ftclient.NewGetRequest("notes.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := ftclient.NewSession(ftclient.Endpoint{Host: "flip1", Port: 30021}, 30022, req,
//	    ftclient.WithDestDir("downloads"),
//	    ftclient.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := s.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("wrote %d bytes to %s\n", res.Bytes, res.Path)
//
// # Data Port Conflicts
//
// When the requested data port is busy, privileged or refused by the system,
// the session asks its BindPolicy whether to try the next port. PromptPolicy
// asks an operator on a terminal, RetryPolicy retries a fixed number of times
// without asking. A refused retry ends the session with
// ErrTerminatedByOperator:
//
//	s, _ := ftclient.NewSession(server, 30022, req,
//	    ftclient.WithBindPolicy(ftclient.PromptPolicy(os.Stdin, os.Stdout)),
//	)
//	if _, err := s.Run(ctx); errors.Is(err, ftclient.ErrTerminatedByOperator) {
//	    os.Exit(3)
//	}
//
// # File Retrieval
//
// Retrieved files are written to the destination directory. An existing file
// is never overwritten: "a.txt" becomes "a-1.txt", then "a-2.txt" and so on.
// The file is created only once the first byte arrives, so a server that
// sends nothing (for example because the file does not exist) leaves nothing
// behind.
//
// # Error Handling
//
// Failures are reported with typed errors that can be inspected with
// errors.As:
//
//	var ce *ftclient.ConnectError
//	if errors.As(err, &ce) {
//	    fmt.Printf("server %s unreachable: %v\n", ce.Addr, ce.Err)
//	}
package ftclient
