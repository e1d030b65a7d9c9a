package ftclient

import "strings"

// Action is the operation a session asks the server to perform.
type Action int

const (
	// ActionList asks for the server's directory listing.
	ActionList Action = iota
	// ActionGet asks for the raw bytes of one file.
	ActionGet
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionGet:
		return "get"
	default:
		return "unknown"
	}
}

// Flag returns the command token for the action.
func (a Action) Flag() string {
	switch a {
	case ActionList:
		return "-l"
	case ActionGet:
		return "-g"
	default:
		return ""
	}
}

// Request is one list or get request. The zero value is a list request.
type Request struct {
	action   Action
	filename string
}

// NewListRequest returns a request for the server's directory listing.
func NewListRequest() Request {
	return Request{action: ActionList}
}

// NewGetRequest returns a request for the named remote file.
func NewGetRequest(filename string) (Request, error) {
	if strings.TrimSpace(filename) == "" {
		return Request{}, &ConfigError{Field: "filename", Reason: "required for get"}
	}
	if strings.ContainsAny(filename, " \t\r\n") {
		return Request{}, &ConfigError{Field: "filename", Value: filename, Reason: "must not contain whitespace"}
	}
	return Request{action: ActionGet, filename: filename}, nil
}

// Action returns the requested action.
func (r Request) Action() Action { return r.action }

// Filename returns the remote file name, empty for list requests.
func (r Request) Filename() string { return r.filename }

// Command returns the wire form of the request: "-l" or "-g <filename>".
func (r Request) Command() string {
	if r.action == ActionGet {
		return r.action.Flag() + " " + r.filename
	}
	return r.action.Flag()
}
