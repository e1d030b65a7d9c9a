package ftclient

import (
	"errors"
	"fmt"
)

var (
	// ErrTerminatedByOperator is returned when a data port conflict was
	// reported and the BindPolicy refused to try another port. The default
	// DenyPolicy refuses without asking anyone.
	ErrTerminatedByOperator = errors.New("ftclient: terminated by operator")

	// ErrSessionUsed is returned by Run on a session that already ran.
	ErrSessionUsed = errors.New("ftclient: session already used")
)

// ConfigError reports an invalid argument supplied by the caller, such as an
// out of range port or a missing file name.
type ConfigError struct {
	// Field names the offending parameter (e.g., "data port")
	Field string

	// Value is the raw value that was rejected
	Value string

	// Reason says what is wrong with it
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("ftclient: invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("ftclient: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConnectError reports that the control connection could not be established.
// No data channel work is attempted after it.
type ConnectError struct {
	// Addr is the control address that was dialed
	Addr string

	// Err is the underlying dial error
	Err error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("ftclient: connect to %s failed: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying dial error.
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// BindConflictError describes a data port that could not be used because it
// is busy or privileged. It is handed to the BindPolicy before a retry and
// never returned from Run on its own.
type BindConflictError struct {
	// Port is the port that could not be bound
	Port int

	// Next is the port that will be tried if the policy agrees
	Next int

	// Privileged is set when Port is at or below 1024
	Privileged bool

	// Denied is set when the system refused the bind on an unprivileged
	// port (EACCES or EPERM)
	Denied bool

	// Err is the bind error, nil when the port was rejected as privileged
	// before trying
	Err error
}

// Error implements the error interface.
func (e *BindConflictError) Error() string {
	if e.Privileged && e.Err == nil {
		return fmt.Sprintf("ftclient: data port %d is privileged", e.Port)
	}
	return fmt.Sprintf("ftclient: data port %d unavailable: %v", e.Port, e.Err)
}

// Unwrap returns the bind error.
func (e *BindConflictError) Unwrap() error {
	return e.Err
}

// InUse returns true if the port was busy rather than privileged or denied.
func (e *BindConflictError) InUse() bool {
	return !e.Privileged && !e.Denied
}

// TransferError reports a socket read or file write failure in the middle of
// a transfer. Anything already written stays on disk.
type TransferError struct {
	// Action is the request that was being served
	Action Action

	// Path is the destination file, empty for listings or when no file was
	// created yet
	Path string

	// Written is the number of payload bytes delivered before the failure
	Written int64

	// Err is the underlying I/O error
	Err error
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("ftclient: %s transfer failed after %d bytes: %v", e.Action, e.Written, e.Err)
	}
	return fmt.Sprintf("ftclient: %s transfer to %s failed after %d bytes: %v", e.Action, e.Path, e.Written, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *TransferError) Unwrap() error {
	return e.Err
}
