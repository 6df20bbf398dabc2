// Package app holds the dashboard's state, its closed Action and Effect
// vocabularies, the pure reducer and the event mapper.
package app

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/b/tabdeck/pkg/config"
	"github.com/b/tabdeck/pkg/grouping"
	"github.com/b/tabdeck/pkg/layout"
	"github.com/b/tabdeck/pkg/tools"
	"github.com/b/tabdeck/pkg/vcs"
)

// Region and container identifiers shared by the reducer, the dashboard tree
// and the renderer.
const (
	RootTabs       = "main"
	TabOverview    = "overview"
	TabCommands    = "commands-tab"
	TabJobs        = "jobs"
	RegionSummary  = "summary"
	RegionGit      = "git"
	RegionCommands = "commands"
	RegionDetail   = "detail"
	RegionTools    = "tools"
	RegionStatus   = "status"
	RegionPrompt   = "prompt"
	OverlayHelp    = "help"
	RegionHelp     = "help-body"
	OverlayConfirm = "confirm"
	RegionConfirm  = "confirm-body"

	jobPrefix = "job-"
)

// JobRegion returns the region id of a job's output tab.
func JobRegion(id int) string {
	return jobPrefix + strconv.Itoa(id)
}

// ParseJobRegion is the inverse of JobRegion.
func ParseJobRegion(region string) (int, bool) {
	rest, ok := strings.CutPrefix(region, jobPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type Mode int

const (
	ModeDashboard Mode = iota
	ModeHelp
	ModeConfirmQuit
)

func (m Mode) String() string {
	switch m {
	case ModeHelp:
		return "help"
	case ModeConfirmQuit:
		return "confirm-quit"
	}
	return "dashboard"
}

type InputMode int

const (
	InputNormal InputMode = iota
	InputText
)

// Prompt is the text entry buffer. Cursor counts runes. HistoryPos equals
// len(History) when not browsing history; Draft keeps the unsent text while
// browsing.
type Prompt struct {
	Text       string
	Cursor     int
	History    []string
	HistoryPos int
	Draft      string
}

// Context describes the environment the dashboard runs in.
type Context struct {
	Root       string
	ToolSpecs  []tools.Spec
	Tools      []tools.Status
	VCS        vcs.Status
	VCSErr     string
	Refreshing bool
}

type JobStatus int

const (
	JobRunning JobStatus = iota
	JobSucceeded
	JobFailed
)

func (s JobStatus) String() string {
	switch s {
	case JobSucceeded:
		return "done"
	case JobFailed:
		return "failed"
	}
	return "running"
}

// Job is one launched command.
type Job struct {
	ID           int
	Name         string
	Tool         string
	Args         []string
	Status       JobStatus
	Output       string
	Err          string
	ExitCode     int
	Duration     time.Duration
	Scroll       int
	StartedFrame int
	EndedFrame   int
}

// CommandLine renders the job's invocation for display.
func (j Job) CommandLine() string {
	return strings.TrimSpace(j.Tool + " " + strings.Join(j.Args, " "))
}

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Notice is a user-visible message shown in the status region. Frame is the
// frame it was raised on.
type Notice struct {
	Level NoticeLevel
	Text  string
	Frame int
}

// Command is a configured named invocation.
type Command struct {
	Name        string
	Tool        string
	Args        []string
	Description string
}

// UI is the presentation part of state.
type UI struct {
	Layout        layout.State
	Width         int
	Height        int
	Frame         int
	CommandCursor int
}

// Settings are fixed at startup. Durations are expressed in frames so the
// reducer never reads a clock.
type Settings struct {
	RefreshEvery int // frames between background VCS refreshes, 0 = never
	NoticeFrames int // frames a notice stays visible, 0 = until dismissed
	HistoryLimit int
	MaxNotices   int
	MaxJobs      int
}

// State is the single source of truth for the dashboard.
type State struct {
	Mode      Mode
	Input     InputMode
	Prompt    Prompt
	Context   Context
	UI        UI
	Jobs      []Job
	Notices   []Notice
	Commands  []Command
	NextJobID int
	Quitting  bool
	Settings  Settings
}

// Focus returns the region holding input focus.
func (s State) Focus() string {
	return s.UI.Layout.Focus
}

// FindJob returns the index of the job with id, or -1.
func (s State) FindJob(id int) int {
	return slices.IndexFunc(s.Jobs, func(j Job) bool { return j.ID == id })
}

// RunningJobs counts jobs that have not completed.
func (s State) RunningJobs() int {
	n := 0
	for _, j := range s.Jobs {
		if j.Status == JobRunning {
			n++
		}
	}
	return n
}

// clone returns a copy whose slices and maps can be modified without
// affecting s.
func (s State) clone() State {
	out := s
	out.UI.Layout = s.UI.Layout.Clone()
	out.Prompt.History = slices.Clone(s.Prompt.History)
	out.Jobs = slices.Clone(s.Jobs)
	out.Notices = slices.Clone(s.Notices)
	out.Context.Tools = slices.Clone(s.Context.Tools)
	return out
}

// NewState builds the initial state for a project root from configuration.
func NewState(cfg *config.Config, root string) State {
	st := State{
		NextJobID: 1,
		Context:   Context{Root: root},
		UI: UI{Layout: layout.State{
			Selections: map[string]layout.Selection{},
			Open:       map[string]bool{},
		}},
		Settings: Settings{
			RefreshEvery: frames(cfg.VCSPoll, cfg.Tick),
			NoticeFrames: frames(cfg.NoticeTTL, cfg.Tick),
			HistoryLimit: 50,
			MaxNotices:   5,
			MaxJobs:      20,
		},
	}
	for _, t := range cfg.Tools {
		st.Context.ToolSpecs = append(st.Context.ToolSpecs, tools.Spec{
			Name:        t.Name,
			VersionArgs: t.VersionArgs,
			Constraint:  t.Constraint,
			Required:    t.Required,
		})
	}
	for _, c := range cfg.Commands {
		st.Commands = append(st.Commands, Command{
			Name:        c.Name,
			Tool:        c.Tool,
			Args:        c.Args,
			Description: c.Description,
		})
	}
	if len(st.Commands) > 0 {
		st.Commands = grouping.Flatten(grouping.By(st.Commands, CommandGroup))
	}
	return st
}

// CommandGroup is the heading a command is listed under.
func CommandGroup(c Command) string { return c.Tool }

func frames(d, tick time.Duration) int {
	if d <= 0 || tick <= 0 {
		return 0
	}
	return max(1, int(d/tick))
}

func (n Notice) String() string {
	prefix := ""
	switch n.Level {
	case NoticeWarn:
		prefix = "warning: "
	case NoticeError:
		prefix = "error: "
	}
	return fmt.Sprintf("%s%s", prefix, n.Text)
}
