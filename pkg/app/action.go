package app

import (
	"time"

	"github.com/b/tabdeck/pkg/store"
	"github.com/b/tabdeck/pkg/tools"
	"github.com/b/tabdeck/pkg/vcs"
)

// Action is an intent produced by the event mapper, the control socket or
// effect feedback. The set of variants is closed.
type Action interface {
	isAction()
}

// Lifecycle.
type (
	Quit        struct{}
	ConfirmQuit struct{}
	CancelQuit  struct{}
)

// Navigation.
type (
	// NextTab and PrevTab step the root tabs.
	NextTab struct{}
	PrevTab struct{}
	// NextJob and PrevJob step the job tabs and bring the jobs tab forward.
	NextJob struct{}
	PrevJob struct{}
	// SelectTab selects a tab by index in the named container.
	SelectTab struct {
		Container string
		Index     int
	}
	FocusNext   struct{}
	FocusPrev   struct{}
	FocusRegion struct{ ID string }
	// MoveCursor moves within the focused region: the command list
	// selection or a job's output scroll.
	MoveCursor struct{ Delta int }
	ToggleHelp struct{}
)

// Text entry.
type (
	EnterInput     struct{}
	InsertText     struct{ Text string }
	DeleteBackward struct{}
	CursorLeft     struct{}
	CursorRight    struct{}
	HistoryPrev    struct{}
	HistoryNext    struct{}
	SubmitInput    struct{}
	CancelInput    struct{}
)

// Commands and jobs.
type (
	InvokeCommand struct {
		Name string
		Args []string
	}
	// RunCommand runs a configured command by name; an empty Name means the
	// command selected in the command list.
	RunCommand      struct{ Name string }
	CommandFinished struct {
		JobID    int
		Output   string
		Duration time.Duration
	}
	CommandFailed struct {
		JobID    int
		Err      error
		Output   string
		ExitCode int
	}
	CloseJob   struct{}
	CopyOutput struct{}
	Copied     struct{ Bytes int }
	CopyFailed struct{ Err error }
)

// Environment and persistence.
type (
	Resize struct {
		Width  int
		Height int
	}
	Tick            struct{}
	RefreshStatus   struct{}
	StatusRefreshed struct{ Status vcs.Status }
	StatusFailed    struct{ Err error }
	ToolsDetected   struct{ Tools []tools.Status }
	DocumentLoaded  struct{ Doc store.Document }
	DocumentSaved   struct{}
	DocumentFailed  struct{ Err error }
	DismissNotice   struct{}
)

func (Quit) isAction()        {}
func (ConfirmQuit) isAction() {}
func (CancelQuit) isAction()  {}

func (NextTab) isAction()     {}
func (PrevTab) isAction()     {}
func (NextJob) isAction()     {}
func (PrevJob) isAction()     {}
func (SelectTab) isAction()   {}
func (FocusNext) isAction()   {}
func (FocusPrev) isAction()   {}
func (FocusRegion) isAction() {}
func (MoveCursor) isAction()  {}
func (ToggleHelp) isAction()  {}

func (EnterInput) isAction()     {}
func (InsertText) isAction()     {}
func (DeleteBackward) isAction() {}
func (CursorLeft) isAction()     {}
func (CursorRight) isAction()    {}
func (HistoryPrev) isAction()    {}
func (HistoryNext) isAction()    {}
func (SubmitInput) isAction()    {}
func (CancelInput) isAction()    {}

func (InvokeCommand) isAction()   {}
func (RunCommand) isAction()      {}
func (CommandFinished) isAction() {}
func (CommandFailed) isAction()   {}
func (CloseJob) isAction()        {}
func (CopyOutput) isAction()      {}
func (Copied) isAction()          {}
func (CopyFailed) isAction()      {}

func (Resize) isAction()          {}
func (Tick) isAction()            {}
func (RefreshStatus) isAction()   {}
func (StatusRefreshed) isAction() {}
func (StatusFailed) isAction()    {}
func (ToolsDetected) isAction()   {}
func (DocumentLoaded) isAction()  {}
func (DocumentSaved) isAction()   {}
func (DocumentFailed) isAction()  {}
func (DismissNotice) isAction()   {}

// ActionByName resolves the argument-free actions that can be requested by
// name, e.g. from the control socket. Unknown names return nil.
func ActionByName(name string, args []string) Action {
	switch name {
	case "quit":
		return Quit{}
	case "next-tab":
		return NextTab{}
	case "prev-tab":
		return PrevTab{}
	case "next-job":
		return NextJob{}
	case "prev-job":
		return PrevJob{}
	case "focus-next":
		return FocusNext{}
	case "focus-prev":
		return FocusPrev{}
	case "help":
		return ToggleHelp{}
	case "refresh":
		return RefreshStatus{}
	case "dismiss":
		return DismissNotice{}
	case "run":
		if len(args) == 0 {
			return nil
		}
		return InvokeCommand{Name: args[0], Args: args[1:]}
	}
	return nil
}
