package ftclient

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// BindPolicy decides whether to retry the data listener on conflict.Next after
// conflict.Port could not be used. Returning false ends the session with
// ErrTerminatedByOperator.
type BindPolicy func(conflict *BindConflictError) bool

// DenyPolicy never retries.
func DenyPolicy(*BindConflictError) bool { return false }

// RetryPolicy retries up to n times without asking anyone.
func RetryPolicy(n int) BindPolicy {
	var mu sync.Mutex
	left := n
	return func(*BindConflictError) bool {
		mu.Lock()
		defer mu.Unlock()
		if left <= 0 {
			return false
		}
		left--
		return true
	}
}

// PromptPolicy asks the operator on out and reads the answer from in. Only
// "y" or "yes" (any case) agrees; anything else, including EOF, declines.
func PromptPolicy(in io.Reader, out io.Writer) BindPolicy {
	br := bufio.NewReader(in)
	return func(conflict *BindConflictError) bool {
		reason := "is not available"
		switch {
		case conflict.Privileged:
			reason = "is privileged"
		case conflict.Denied:
			reason = "is not permitted"
		}
		fmt.Fprintf(out, "data port %d %s, try port %d instead? [y/N] ", conflict.Port, reason, conflict.Next)

		answer, err := br.ReadString('\n')
		if err != nil && answer == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
