package ftclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Command(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "-l", NewListRequest().Command())

	req, err := NewGetRequest("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, ActionGet, req.Action())
	assert.Equal(t, "notes.txt", req.Filename())
	assert.Equal(t, "-g notes.txt", req.Command())
}

func TestNewGetRequest_Invalid(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", "   ", "two words.txt", "tab\tname"} {
		_, err := NewGetRequest(name)
		var ce *ConfigError
		assert.ErrorAs(t, err, &ce, "filename %q", name)
	}
}

func TestAction_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "list", ActionList.String())
	assert.Equal(t, "get", ActionGet.String())
	assert.Equal(t, "unknown", Action(9).String())
	assert.Empty(t, Action(9).Flag())
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "DISCONNECTED", StateDisconnected.String())
	assert.Equal(t, "TRANSFERRING", StateTransferring.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestParsePort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1025", 1025, false},
		{"30021", 30021, false},
		{"65535", 65535, false},
		{"1024", 0, true},
		{"21", 0, true},
		{"65536", 0, true},
		{"-1", 0, true},
		{"http", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePort("server port", tt.in)
			if tt.wantErr {
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpoint(t *testing.T) {
	t.Parallel()
	e := Endpoint{Host: "flip1.engr.oregonstate.edu", Port: 30021}
	assert.NoError(t, e.Validate())
	assert.Equal(t, "flip1.engr.oregonstate.edu:30021", e.String())
	assert.Equal(t, "[::1]:30021", Endpoint{Host: "::1", Port: 30021}.String())

	assert.Error(t, Endpoint{Host: "h", Port: 1024}.Validate())
	assert.Error(t, Endpoint{Port: 30021}.Validate())
}
