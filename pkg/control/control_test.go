package control

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/config"
	"github.com/b/tabdeck/pkg/layout"
)

func startServer(t *testing.T, snap func() Snapshot) (*Server, chan app.Action) {
	t.Helper()
	got := make(chan app.Action, 8)
	s := NewServer(filepath.Join(t.TempDir(), "c.sock"), Options{
		Send:     func(a app.Action) { got <- a },
		Snapshot: snap,
	})
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s, got
}

func dial(t *testing.T, s *Server) *Client {
	t.Helper()
	c, err := Dial(s.SocketPath(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPing(t *testing.T) {
	s, _ := startServer(t, nil)
	c := dial(t, s)
	require.NoError(t, c.Ping())

	reply, err := c.Do(Message{Type: MsgPing, ID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, MsgPong, reply.Type)
	assert.Equal(t, "abc", reply.ID)
}

func TestActionIsForwarded(t *testing.T) {
	s, got := startServer(t, nil)
	c := dial(t, s)

	require.NoError(t, c.Action("next-tab"))
	require.NoError(t, c.Action("run", "status", "--short"))

	assert.Equal(t, app.NextTab{}, <-got)
	inv, ok := (<-got).(app.InvokeCommand)
	require.True(t, ok)
	assert.Equal(t, "status", inv.Name)
	assert.Equal(t, []string{"--short"}, inv.Args)
}

func TestActionRejected(t *testing.T) {
	s, got := startServer(t, nil)
	c := dial(t, s)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "", want: "name: failed required"},
		{name: "explode", want: `unknown action "explode"`},
		{name: "run", want: `unknown action "run"`},
		{name: "run", args: []string{"Bad Name"}, want: "command: failed commandname"},
	}
	for _, tt := range tests {
		err := c.Action(tt.name, tt.args...)
		require.Error(t, err, tt.name)
		assert.Contains(t, err.Error(), tt.want)
	}
	assert.Empty(t, got)
}

func TestUnknownTypeAndMalformedLine(t *testing.T) {
	s, _ := startServer(t, nil)
	c := dial(t, s)

	_, err := c.Do(Message{Type: "shout"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown message type "shout"`)

	_, err = c.conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	line, err := c.reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "malformed message")

	// The connection survives both.
	require.NoError(t, c.Ping())
}

func TestStateSnapshot(t *testing.T) {
	st := app.NewState(config.Default(), "/repo")
	st.UI.Layout.Selections[app.RootTabs] = layout.Selection{Tabs: []string{"overview", "commands"}, Selected: 1}
	st, _ = app.Process(st, app.InvokeCommand{Name: "status"})

	s, _ := startServer(t, func() Snapshot { return SnapshotOf(st) })
	snap, err := dial(t, s).State()
	require.NoError(t, err)

	assert.Equal(t, "dashboard", snap.Mode)
	assert.Equal(t, app.JobRegion(1), snap.Focus)
	assert.Equal(t, "commands", snap.Tabs[app.RootTabs])
	assert.Equal(t, app.JobRegion(1), snap.Tabs[app.TabJobs])
	require.Len(t, snap.Jobs, 1)
	assert.Equal(t, "status", snap.Jobs[0].Name)
	assert.Equal(t, "running", snap.Jobs[0].Status)
	assert.Equal(t, "git status --short", snap.Jobs[0].Command)
}

func TestStateUnavailable(t *testing.T) {
	s, _ := startServer(t, nil)
	_, err := dial(t, s).State()
	assert.EqualError(t, err, "state unavailable")
}

func TestStartRefusesLiveSocket(t *testing.T) {
	s, _ := startServer(t, nil)
	other := NewServer(s.SocketPath(), Options{})
	assert.ErrorIs(t, other.Start(), ErrAlreadyRunning)
}

func TestStartRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, l.Close())
	_, err = os.Stat(path)
	require.NoError(t, err, "socket file left behind")

	s := NewServer(path, Options{})
	require.NoError(t, s.Start())
	s.Stop()

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStopClosesClients(t *testing.T) {
	s, _ := startServer(t, nil)
	c := dial(t, s)
	require.NoError(t, c.Ping())
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.Equal(t, 0, s.ClientCount())
	assert.Error(t, c.Ping())
}

func TestPanickingSinkDropsOnlyThatClient(t *testing.T) {
	s := NewServer(filepath.Join(t.TempDir(), "c.sock"), Options{
		Send: func(a app.Action) {
			if _, ok := a.(app.Quit); ok {
				panic("sink exploded")
			}
		},
	})
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	c := dial(t, s)
	assert.Error(t, c.Action("quit"))

	require.NoError(t, dial(t, s).Ping())
	require.NoError(t, dial(t, s).Action("next-tab"))
}
