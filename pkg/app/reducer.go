package app

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/b/tabdeck/pkg/layout"
	"github.com/b/tabdeck/pkg/store"
)

// Process applies a to s and returns the next state plus the effects to
// perform. It is total and deterministic: actions that do not apply in the
// current state return s unchanged with no effects, and nothing here reads
// the clock or touches the outside world. s is never modified.
func Process(s State, a Action) (State, []Effect) {
	st := s.clone()
	var effs []Effect

	switch a := a.(type) {
	case Quit:
		effs = st.quit()
	case ConfirmQuit:
		if st.Mode != ModeConfirmQuit {
			return s, nil
		}
		st.Mode = ModeDashboard
		delete(st.UI.Layout.Open, OverlayConfirm)
		effs = st.finish()
	case CancelQuit:
		if st.Mode != ModeConfirmQuit {
			return s, nil
		}
		st.Mode = ModeDashboard
		delete(st.UI.Layout.Open, OverlayConfirm)

	case NextTab:
		effs = st.moveTab(1)
	case PrevTab:
		effs = st.moveTab(-1)
	case NextJob:
		effs = st.moveJob(1)
	case PrevJob:
		effs = st.moveJob(-1)
	case SelectTab:
		effs = st.selectTab(a.Container, a.Index)
	case FocusNext:
		st.moveFocus(1)
	case FocusPrev:
		st.moveFocus(-1)
	case FocusRegion:
		if a.ID != "" {
			st.UI.Layout.Focus = a.ID
		}
	case MoveCursor:
		st.moveCursor(a.Delta)
	case ToggleHelp:
		switch st.Mode {
		case ModeDashboard:
			st.Mode = ModeHelp
			st.UI.Layout.Open[OverlayHelp] = true
		case ModeHelp:
			st.Mode = ModeDashboard
			delete(st.UI.Layout.Open, OverlayHelp)
		}

	case EnterInput:
		if st.Mode != ModeDashboard || st.Input == InputText {
			return s, nil
		}
		st.Input = InputText
		st.resetPrompt()
	case InsertText:
		st.insertText(a.Text)
	case DeleteBackward:
		r := []rune(st.Prompt.Text)
		c := min(st.Prompt.Cursor, len(r))
		if st.Input != InputText || c <= 0 {
			return s, nil
		}
		st.Prompt.Text = string(append(r[:c-1:c-1], r[c:]...))
		st.Prompt.Cursor = c - 1
	case CursorLeft:
		st.moveTextCursor(-1)
	case CursorRight:
		st.moveTextCursor(1)
	case HistoryPrev:
		st.historyPrev()
	case HistoryNext:
		st.historyNext()
	case SubmitInput:
		if st.Input != InputText {
			return s, nil
		}
		line := strings.TrimSpace(st.Prompt.Text)
		st.Input = InputNormal
		if line != "" {
			st.pushHistory(line)
			effs = st.submit(line)
		}
		st.resetPrompt()
	case CancelInput:
		if st.Input != InputText {
			return s, nil
		}
		st.Input = InputNormal
		st.resetPrompt()

	case InvokeCommand:
		effs = st.invoke(a.Name, a.Args)
	case RunCommand:
		name := a.Name
		if name == "" {
			if st.UI.CommandCursor < 0 || st.UI.CommandCursor >= len(st.Commands) {
				return s, nil
			}
			name = st.Commands[st.UI.CommandCursor].Name
		}
		effs = st.invoke(name, nil)
	case CommandFinished:
		i := st.FindJob(a.JobID)
		if i < 0 || st.Jobs[i].Status != JobRunning {
			return s, nil
		}
		j := &st.Jobs[i]
		j.Status = JobSucceeded
		j.Output = a.Output
		j.Duration = a.Duration
		j.EndedFrame = st.UI.Frame
		if st.Context.Root != "" {
			st.Context.Refreshing = true
			effs = []Effect{RefreshVCS{Dir: st.Context.Root, Force: true}}
		}
	case CommandFailed:
		i := st.FindJob(a.JobID)
		if i < 0 || st.Jobs[i].Status != JobRunning {
			return s, nil
		}
		j := &st.Jobs[i]
		j.Status = JobFailed
		j.Output = a.Output
		j.Err = errText(a.Err)
		j.ExitCode = a.ExitCode
		j.EndedFrame = st.UI.Frame
		st.notice(NoticeError, fmt.Sprintf("%s failed: %s", j.Name, j.Err))
	case CloseJob:
		id, ok := ParseJobRegion(st.Focus())
		i := st.FindJob(id)
		if !ok || i < 0 {
			return s, nil
		}
		if st.Jobs[i].Status == JobRunning {
			st.notice(NoticeWarn, fmt.Sprintf("%s is still running", st.Jobs[i].Name))
			break
		}
		st.Jobs = slices.Delete(st.Jobs, i, i+1)
	case CopyOutput:
		id, ok := ParseJobRegion(st.Focus())
		i := st.FindJob(id)
		if !ok || i < 0 || st.Jobs[i].Output == "" {
			return s, nil
		}
		effs = []Effect{CopyText{Text: st.Jobs[i].Output}}
	case Copied:
		st.notice(NoticeInfo, fmt.Sprintf("copied %d bytes", a.Bytes))
	case CopyFailed:
		st.notice(NoticeError, "copy failed: "+errText(a.Err))

	case Resize:
		if a.Width == st.UI.Width && a.Height == st.UI.Height {
			return s, nil
		}
		st.UI.Width = max(a.Width, 0)
		st.UI.Height = max(a.Height, 0)
	case Tick:
		effs = st.tick()
	case RefreshStatus:
		st.Context.Refreshing = true
		effs = []Effect{RefreshVCS{Dir: st.Context.Root, Force: true}}
		if len(st.Context.ToolSpecs) > 0 {
			effs = append(effs, DetectTools{Specs: slices.Clone(st.Context.ToolSpecs)})
		}
	case StatusRefreshed:
		st.Context.VCS = a.Status
		st.Context.VCSErr = ""
		st.Context.Refreshing = false
	case StatusFailed:
		msg := errText(a.Err)
		if msg != st.Context.VCSErr {
			st.notice(NoticeWarn, "git status: "+msg)
		}
		st.Context.VCSErr = msg
		st.Context.Refreshing = false
	case ToolsDetected:
		st.Context.Tools = slices.Clone(a.Tools)
		for _, t := range a.Tools {
			if t.Required && !t.OK() {
				st.notice(NoticeWarn, fmt.Sprintf("required tool %s unavailable: %s", t.Name, t.Err))
			}
		}
	case DocumentLoaded:
		st.applyDocument(a.Doc)
	case DocumentFailed:
		st.notice(NoticeError, "saving state: "+errText(a.Err))
	case DismissNotice:
		if len(st.Notices) == 0 {
			return s, nil
		}
		st.Notices = st.Notices[:len(st.Notices)-1]

	default:
		// DocumentSaved and anything unknown.
		return s, nil
	}
	return st, effs
}

func (s *State) quit() []Effect {
	if s.Mode == ModeConfirmQuit {
		return nil
	}
	if s.RunningJobs() > 0 {
		s.Mode = ModeConfirmQuit
		s.Input = InputNormal
		delete(s.UI.Layout.Open, OverlayHelp)
		s.UI.Layout.Open[OverlayConfirm] = true
		return nil
	}
	return s.finish()
}

func (s *State) finish() []Effect {
	s.Quitting = true
	return []Effect{SaveDocument{Doc: s.Document()}}
}

// moveTab steps the root tabs. Nested containers have their own actions so
// the root ring stays reachable wherever the focus is.
func (s *State) moveTab(delta int) []Effect {
	sel, ok := s.UI.Layout.Selections[RootTabs]
	if !ok {
		return nil
	}
	return s.selectTab(RootTabs, CalculateIndex(sel.Selected, delta, len(sel.Tabs)))
}

// moveJob steps the job tabs, focuses the selected job and shows the jobs
// tab.
func (s *State) moveJob(delta int) []Effect {
	sel, ok := s.UI.Layout.Selections[TabJobs]
	if !ok || len(sel.Tabs) == 0 {
		return nil
	}
	if i := CalculateIndex(sel.Selected, delta, len(sel.Tabs)); i != sel.Selected {
		sel.Previous = sel.Selected
		sel.Selected = i
		sel.ChangedAt = s.UI.Frame
		s.UI.Layout.Selections[TabJobs] = sel
	}
	s.UI.Layout.Focus = sel.Tabs[sel.Selected]
	if !s.showJobs() {
		return nil
	}
	return []Effect{SaveDocument{Doc: s.Document()}}
}

// showJobs selects the jobs tab of the root container and reports whether
// the selection changed.
func (s *State) showJobs() bool {
	root, ok := s.UI.Layout.Selections[RootTabs]
	if !ok {
		return false
	}
	i := slices.Index(root.Tabs, TabJobs)
	if i < 0 || i == root.Selected {
		return false
	}
	root.Previous = root.Selected
	root.Selected = i
	root.ChangedAt = s.UI.Frame
	s.UI.Layout.Selections[RootTabs] = root
	return true
}

func (s *State) selectTab(container string, index int) []Effect {
	sel, ok := s.UI.Layout.Selections[container]
	if !ok || index < 0 || index >= len(sel.Tabs) || index == sel.Selected {
		return nil
	}
	sel.Previous = sel.Selected
	sel.Selected = index
	sel.ChangedAt = s.UI.Frame
	s.UI.Layout.Selections[container] = sel
	return []Effect{SaveDocument{Doc: s.Document()}}
}

func (s *State) moveFocus(delta int) {
	ring := s.UI.Layout.Focusables
	if len(ring) == 0 {
		return
	}
	var next int
	switch i := slices.Index(ring, s.UI.Layout.Focus); {
	case i >= 0:
		next = CalculateIndex(i, delta, len(ring))
	case delta > 0:
		next = 0
	default:
		next = len(ring) - 1
	}
	s.UI.Layout.Focus = ring[next]
}

func (s *State) moveCursor(delta int) {
	focus := s.Focus()
	if focus == RegionCommands {
		if i := CalculateIndex(s.UI.CommandCursor, delta, len(s.Commands)); i >= 0 {
			s.UI.CommandCursor = i
		}
		return
	}
	id, ok := ParseJobRegion(focus)
	if i := s.FindJob(id); ok && i >= 0 {
		j := &s.Jobs[i]
		j.Scroll = clampIndex(j.Scroll, delta, strings.Count(j.Output, "\n")+1)
	}
}

func (s *State) resetPrompt() {
	s.Prompt.Text = ""
	s.Prompt.Cursor = 0
	s.Prompt.Draft = ""
	s.Prompt.HistoryPos = len(s.Prompt.History)
}

func (s *State) insertText(text string) {
	if s.Input != InputText {
		return
	}
	clean := []rune(strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, text))
	if len(clean) == 0 {
		return
	}
	r := []rune(s.Prompt.Text)
	c := min(max(s.Prompt.Cursor, 0), len(r))
	out := make([]rune, 0, len(r)+len(clean))
	out = append(out, r[:c]...)
	out = append(out, clean...)
	out = append(out, r[c:]...)
	s.Prompt.Text = string(out)
	s.Prompt.Cursor = c + len(clean)
}

func (s *State) moveTextCursor(delta int) {
	if s.Input != InputText {
		return
	}
	n := len([]rune(s.Prompt.Text))
	s.Prompt.Cursor = min(max(s.Prompt.Cursor+delta, 0), n)
}

func (s *State) historyPrev() {
	p := &s.Prompt
	n := len(p.History)
	if s.Input != InputText || n == 0 {
		return
	}
	if p.HistoryPos >= n {
		p.Draft = p.Text
	}
	p.HistoryPos = clampIndex(p.HistoryPos, -1, n)
	p.Text = p.History[p.HistoryPos]
	p.Cursor = len([]rune(p.Text))
}

func (s *State) historyNext() {
	p := &s.Prompt
	n := len(p.History)
	if s.Input != InputText || p.HistoryPos >= n {
		return
	}
	p.HistoryPos++
	if p.HistoryPos >= n {
		p.HistoryPos = n
		p.Text = p.Draft
	} else {
		p.Text = p.History[p.HistoryPos]
	}
	p.Cursor = len([]rune(p.Text))
}

func (s *State) pushHistory(line string) {
	h := s.Prompt.History
	if len(h) > 0 && h[len(h)-1] == line {
		return
	}
	h = append(h, line)
	if limit := s.Settings.HistoryLimit; limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	s.Prompt.History = h
}

// submit interprets a prompt line: "name args..." runs a configured
// command, "!tool args..." runs any tool.
func (s *State) submit(line string) []Effect {
	fields := strings.Fields(line)
	if tool, ok := strings.CutPrefix(fields[0], "!"); ok {
		if tool == "" {
			s.notice(NoticeWarn, "missing tool name after !")
			return nil
		}
		return s.startJob(tool, tool, fields[1:])
	}
	return s.invoke(fields[0], fields[1:])
}

func (s *State) invoke(name string, args []string) []Effect {
	i := slices.IndexFunc(s.Commands, func(c Command) bool { return c.Name == name })
	if i < 0 {
		s.notice(NoticeWarn, fmt.Sprintf("unknown command %q", name))
		return nil
	}
	c := s.Commands[i]
	all := append(slices.Clone(c.Args), args...)
	return s.startJob(c.Name, c.Tool, all)
}

// startJob records a running job, brings its output tab to the front and
// requests the tool run.
func (s *State) startJob(name, tool string, args []string) []Effect {
	id := s.NextJobID
	s.NextJobID++
	if len(args) == 0 {
		args = nil
	}
	s.Jobs = append(s.Jobs, Job{
		ID:           id,
		Name:         name,
		Tool:         tool,
		Args:         args,
		Status:       JobRunning,
		StartedFrame: s.UI.Frame,
	})
	s.trimJobs()

	region := JobRegion(id)
	sels := s.UI.Layout.Selections
	jobs := sels[TabJobs]
	tabs := append(slices.Clone(jobs.Tabs), region)
	sels[TabJobs] = layout.Selection{
		Tabs:      tabs,
		Selected:  len(tabs) - 1,
		Previous:  jobs.Selected,
		ChangedAt: s.UI.Frame,
	}
	s.showJobs()
	s.UI.Layout.Focus = region

	return []Effect{RunTool{JobID: id, Tool: tool, Args: slices.Clone(args), Dir: s.Context.Root}}
}

// trimJobs drops the oldest finished jobs beyond MaxJobs.
func (s *State) trimJobs() {
	limit := s.Settings.MaxJobs
	for limit > 0 && len(s.Jobs) > limit {
		i := slices.IndexFunc(s.Jobs, func(j Job) bool { return j.Status != JobRunning })
		if i < 0 {
			return
		}
		s.Jobs = slices.Delete(s.Jobs, i, i+1)
	}
}

func (s *State) tick() []Effect {
	s.UI.Frame++
	if ttl := s.Settings.NoticeFrames; ttl > 0 {
		s.Notices = slices.DeleteFunc(s.Notices, func(n Notice) bool {
			return s.UI.Frame-n.Frame >= ttl
		})
	}
	every := s.Settings.RefreshEvery
	if every <= 0 || s.UI.Frame%every != 0 || s.Context.Refreshing || s.Context.Root == "" {
		return nil
	}
	s.Context.Refreshing = true
	return []Effect{RefreshVCS{Dir: s.Context.Root}}
}

func (s *State) notice(level NoticeLevel, text string) {
	s.Notices = append(s.Notices, Notice{Level: level, Text: text, Frame: s.UI.Frame})
	if limit := s.Settings.MaxNotices; limit > 0 && len(s.Notices) > limit {
		s.Notices = slices.Delete(s.Notices, 0, len(s.Notices)-limit)
	}
}

// Document returns the persisted view of s. Job tabs and job focus are not
// persisted because jobs do not outlive the process.
func (s State) Document() store.Document {
	doc := store.Document{
		Version: store.CurrentVersion,
		History: slices.Clone(s.Prompt.History),
	}
	if _, isJob := ParseJobRegion(s.Focus()); !isJob {
		doc.Focus = s.Focus()
	}
	for id, sel := range s.UI.Layout.Selections {
		cur := sel.Current()
		if id == TabJobs || cur == "" {
			continue
		}
		if doc.Selections == nil {
			doc.Selections = make(map[string]string)
		}
		doc.Selections[id] = cur
	}
	return doc
}

// applyDocument merges a persisted document into s. Selections name tab ids;
// a container that has not been laid out yet gets a one-tab placeholder
// that layout reconciles against the real tab list.
func (s *State) applyDocument(doc store.Document) {
	for container, tab := range doc.Selections {
		sel, ok := s.UI.Layout.Selections[container]
		if !ok {
			s.UI.Layout.Selections[container] = layout.Selection{Tabs: []string{tab}, Selected: 0}
			continue
		}
		if i := slices.Index(sel.Tabs, tab); i >= 0 && i != sel.Selected {
			sel.Previous = sel.Selected
			sel.Selected = i
			sel.ChangedAt = s.UI.Frame
			s.UI.Layout.Selections[container] = sel
		}
	}
	if doc.Focus != "" {
		s.UI.Layout.Focus = doc.Focus
	}
	if doc.History != nil {
		h := slices.Clone(doc.History)
		if limit := s.Settings.HistoryLimit; limit > 0 && len(h) > limit {
			h = h[len(h)-limit:]
		}
		s.Prompt.History = h
		if s.Input != InputText {
			s.Prompt.HistoryPos = len(h)
		}
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
