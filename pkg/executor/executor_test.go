package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/clipboard"
	"github.com/b/tabdeck/pkg/store"
	"github.com/b/tabdeck/pkg/tools"
	"github.com/b/tabdeck/pkg/vcs"
)

type fakeTools struct {
	out   tools.Output
	err   error
	panic bool
	calls [][]string
}

func (f *fakeTools) Run(_ context.Context, _ string, tool string, args ...string) (tools.Output, error) {
	if f.panic {
		panic("boom")
	}
	f.calls = append(f.calls, append([]string{tool}, args...))
	return f.out, f.err
}

func (f *fakeTools) DetectAll(_ context.Context, specs []tools.Spec) []tools.Status {
	out := make([]tools.Status, len(specs))
	for i, s := range specs {
		out[i] = tools.Status{Name: s.Name, Found: true, Satisfied: true}
	}
	return out
}

type failingClipboard struct{}

func (failingClipboard) Read() (string, error) { return "", clipboard.ErrUnavailable }
func (failingClipboard) Write(string) error    { return clipboard.ErrUnavailable }

func newExecutor(t *testing.T, opts Options) *Executor {
	t.Helper()
	opts.Logger = zaptest.NewLogger(t)
	return New(context.Background(), opts)
}

func TestRunToolMissingBinary(t *testing.T) {
	ex := newExecutor(t, Options{Tools: tools.Runner{}})
	eff := app.RunTool{JobID: 7, Tool: "tabdeck-no-such-binary-xyz", Args: []string{"--flag"}}

	act, err := ex.Execute(context.Background(), eff)
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrNotFound)

	failed, ok := act.(app.CommandFailed)
	require.True(t, ok, "got %T", act)
	assert.Equal(t, 7, failed.JobID)
	assert.Equal(t, -1, failed.ExitCode)

	// Through the command path the loop just receives the failure message.
	msg := ex.Dispatch(eff)()
	assert.IsType(t, app.CommandFailed{}, msg)
}

func TestRunToolSuccess(t *testing.T) {
	ft := &fakeTools{out: tools.Output{Stdout: "ok\n", Duration: time.Second}}
	ex := newExecutor(t, Options{Tools: ft})

	act, err := ex.Execute(context.Background(), app.RunTool{JobID: 1, Tool: "git", Args: []string{"status"}})
	require.NoError(t, err)
	assert.Equal(t, app.CommandFinished{JobID: 1, Output: "ok\n", Duration: time.Second}, act)
	assert.Equal(t, [][]string{{"git", "status"}}, ft.calls)
}

func TestRunToolExitCode(t *testing.T) {
	ft := &fakeTools{
		out: tools.Output{Stdout: "partial"},
		err: &tools.ExecError{Tool: "uv", ExitCode: 2, Stderr: "bad"},
	}
	ex := newExecutor(t, Options{Tools: ft})

	act, err := ex.Execute(context.Background(), app.RunTool{JobID: 3, Tool: "uv"})
	require.Error(t, err)
	failed := act.(app.CommandFailed)
	assert.Equal(t, 2, failed.ExitCode)
	assert.Equal(t, "partial", failed.Output)
}

func TestDispatchRecoversPanics(t *testing.T) {
	ex := newExecutor(t, Options{Tools: &fakeTools{panic: true}})

	msg := ex.Dispatch(app.RunTool{JobID: 4, Tool: "git"})()
	failed, ok := msg.(app.CommandFailed)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, 4, failed.JobID)
	assert.ErrorContains(t, failed.Err, "panicked")
}

func TestRefreshVCS(t *testing.T) {
	ft := &fakeTools{out: tools.Output{Stdout: "# branch.head main\n"}}
	cache := vcs.NewCache(ft, time.Hour)
	ex := newExecutor(t, Options{VCS: cache})

	act, err := ex.Execute(context.Background(), app.RefreshVCS{Dir: "/repo"})
	require.NoError(t, err)
	assert.Equal(t, "main", act.(app.StatusRefreshed).Status.Branch)

	_, err = ex.Execute(context.Background(), app.RefreshVCS{Dir: "/repo"})
	require.NoError(t, err)
	assert.Len(t, ft.calls, 1, "second read served from cache")

	_, err = ex.Execute(context.Background(), app.RefreshVCS{Dir: "/repo", Force: true})
	require.NoError(t, err)
	assert.Len(t, ft.calls, 2)

	// The forced read repopulates the cache.
	_, err = ex.Execute(context.Background(), app.RefreshVCS{Dir: "/repo"})
	require.NoError(t, err)
	assert.Len(t, ft.calls, 2)
}

func TestRefreshVCSFailure(t *testing.T) {
	ft := &fakeTools{err: errors.New("git exploded")}
	ex := newExecutor(t, Options{VCS: vcs.NewCache(ft, time.Hour)})

	act, err := ex.Execute(context.Background(), app.RefreshVCS{Dir: "/repo"})
	require.Error(t, err)
	assert.IsType(t, app.StatusFailed{}, act)
}

func TestDetectTools(t *testing.T) {
	ex := newExecutor(t, Options{Tools: &fakeTools{}})
	act, err := ex.Execute(context.Background(), app.DetectTools{Specs: []tools.Spec{{Name: "git"}, {Name: "uv"}}})
	require.NoError(t, err)
	got := act.(app.ToolsDetected).Tools
	require.Len(t, got, 2)
	assert.Equal(t, "uv", got[1].Name)

	act, err = newExecutor(t, Options{}).Execute(context.Background(), app.DetectTools{Specs: []tools.Spec{{Name: "git", Required: true}}})
	require.NoError(t, err)
	st := act.(app.ToolsDetected).Tools[0]
	assert.False(t, st.OK())
	assert.True(t, st.Required)
}

func TestSaveDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := store.New(path, nil)
	ex := newExecutor(t, Options{Store: s})

	doc := store.Document{Selections: map[string]string{"main": "overview"}, Focus: "git"}
	act, err := ex.Execute(context.Background(), app.SaveDocument{Doc: doc})
	require.NoError(t, err)
	assert.Equal(t, app.DocumentSaved{}, act)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "git", got.Focus)
}

func TestSaveDocumentFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))
	s := store.New(path, nil)
	ex := newExecutor(t, Options{Store: s})

	act, err := ex.Execute(context.Background(), app.SaveDocument{})
	require.Error(t, err)
	assert.IsType(t, app.DocumentFailed{}, act)
}

func TestCopyText(t *testing.T) {
	mem := &clipboard.Memory{}
	ex := newExecutor(t, Options{Clipboard: mem})

	act, err := ex.Execute(context.Background(), app.CopyText{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, app.Copied{Bytes: 5}, act)
	got, _ := mem.Read()
	assert.Equal(t, "hello", got)

	ex = newExecutor(t, Options{Clipboard: failingClipboard{}})
	act, err = ex.Execute(context.Background(), app.CopyText{Text: "x"})
	assert.ErrorIs(t, err, clipboard.ErrUnavailable)
	assert.IsType(t, app.CopyFailed{}, act)
}

type bogusEffect struct{ app.Effect }

func TestUnknownEffect(t *testing.T) {
	ex := newExecutor(t, Options{})
	act, err := ex.Execute(context.Background(), bogusEffect{})
	assert.ErrorIs(t, err, ErrUnknownEffect)
	assert.Nil(t, act)
	assert.Nil(t, ex.Dispatch(bogusEffect{})())
}

func TestBatchAndStats(t *testing.T) {
	ex := newExecutor(t, Options{Tools: &fakeTools{}})
	assert.Nil(t, ex.Batch(nil))
	require.NotNil(t, ex.Batch([]app.Effect{app.DetectTools{}}))

	ex.Dispatch(app.DetectTools{})()
	sample, ok := ex.Stats().Get("detect_tools")
	require.True(t, ok)
	assert.Equal(t, 1, sample.Count)
}
