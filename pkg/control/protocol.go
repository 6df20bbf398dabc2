// Package control is the dashboard's local control socket. Other processes
// send newline-delimited JSON messages to request actions or read a state
// snapshot.
package control

import (
	"sort"

	"github.com/b/tabdeck/pkg/app"
)

// MessageType identifies the type of message
type MessageType string

const (
	MsgAction MessageType = "action" // Client -> Server: perform a named action
	MsgState  MessageType = "state"  // Client -> Server: request a snapshot
	MsgPing   MessageType = "ping"
	MsgPong   MessageType = "pong"
	MsgOK     MessageType = "ok"    // Server -> Client: action accepted
	MsgError  MessageType = "error" // Server -> Client: request rejected
)

// Message is the envelope for both directions. ID is echoed in the reply.
type Message struct {
	Type    MessageType `json:"type"`
	ID      string      `json:"id,omitempty"`
	Name    string      `json:"name,omitempty"`
	Args    []string    `json:"args,omitempty"`
	Payload *Snapshot   `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Snapshot is a read-only summary of dashboard state.
type Snapshot struct {
	Mode    string            `json:"mode"`
	Focus   string            `json:"focus"`
	Tabs    map[string]string `json:"tabs"` // container id -> selected tab id
	Branch  string            `json:"branch,omitempty"`
	Dirty   bool              `json:"dirty"`
	Jobs    []JobInfo         `json:"jobs"`
	Notices []string          `json:"notices,omitempty"`
}

type JobInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Command  string `json:"command"`
	Status   string `json:"status"`
	ExitCode int    `json:"exit_code,omitempty"`
}

// SnapshotOf summarizes st. The result shares nothing with st.
func SnapshotOf(st app.State) Snapshot {
	snap := Snapshot{
		Mode:   st.Mode.String(),
		Focus:  st.Focus(),
		Tabs:   make(map[string]string, len(st.UI.Layout.Selections)),
		Branch: st.Context.VCS.Branch,
		Dirty:  st.Context.VCS.Dirty(),
		Jobs:   make([]JobInfo, 0, len(st.Jobs)),
	}
	for id, sel := range st.UI.Layout.Selections {
		if cur := sel.Current(); cur != "" {
			snap.Tabs[id] = cur
		}
	}
	for _, j := range st.Jobs {
		snap.Jobs = append(snap.Jobs, JobInfo{
			ID:       j.ID,
			Name:     j.Name,
			Command:  j.CommandLine(),
			Status:   j.Status.String(),
			ExitCode: j.ExitCode,
		})
	}
	for _, n := range st.Notices {
		snap.Notices = append(snap.Notices, n.String())
	}
	return snap
}

// ActionNames lists the names accepted in action messages.
func ActionNames() []string {
	names := []string{"quit", "next-tab", "prev-tab", "next-job", "prev-job", "focus-next", "focus-prev", "help", "refresh", "dismiss", "run"}
	sort.Strings(names)
	return names
}
