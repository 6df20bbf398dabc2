package runtime

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/dashboard"
	"github.com/b/tabdeck/pkg/executor"
	"github.com/b/tabdeck/pkg/layout"
	"github.com/b/tabdeck/pkg/render"
)

const defaultTick = 100 * time.Millisecond

type Options struct {
	Context  *Context
	Executor *executor.Executor
	Renderer *render.Renderer
	// State is the initial state, usually app.NewState plus the loaded
	// document.
	State app.State
	// Publisher receives a snapshot after every update; optional.
	Publisher *Publisher
}

// Model is the bubbletea model of the dashboard. It is the only owner of
// application state.
type Model struct {
	ctx      *Context
	log      *zap.Logger
	keys     app.KeyMap
	exec     *executor.Executor
	renderer *render.Renderer
	layout   dashboard.Options
	tick     time.Duration
	pub      *Publisher

	st   app.State
	res  layout.Result
	hits render.HitMap
}

func New(opts Options) Model {
	cfg := opts.Context.Config
	log := opts.Context.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := Model{
		ctx:      opts.Context,
		log:      log.Named("runtime"),
		keys:     app.NewKeyMap(cfg.Bindings),
		exec:     opts.Executor,
		renderer: opts.Renderer,
		layout:   dashboard.Options{HeaderHeight: cfg.HeaderHeight},
		tick:     cfg.Tick,
		pub:      opts.Publisher,
	}
	if m.tick <= 0 {
		m.tick = defaultTick
	}
	m.settle(opts.State, nil)
	return m
}

// State returns the current application state.
func (m Model) State() app.State { return m.st }

// Result returns the layout of the current frame.
func (m Model) Result() layout.Result { return m.res }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		func() tea.Msg { return app.RefreshStatus{} },
	)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return app.TickMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var act app.Action

	switch msg := msg.(type) {
	case app.TickMsg:
		cmds = append(cmds, tickCmd(m.tick))
	case tea.KeyMsg:
		if m.st.Mode == app.ModeDashboard && m.st.Input == app.InputText && key.Matches(msg, m.keys.Paste) {
			act = m.paste()
			if act == nil {
				return m, nil
			}
		}
	case tea.MouseMsg:
		act = app.MapMouse(msg, m.st.Mode, m.st.Input, m.hits)
	}
	if act == nil {
		act = app.MapEvent(msg, m.st.Mode, m.st.Focus(), m.st.Input, m.keys)
	}

	effs := m.settle(m.st, act)
	if m.exec != nil {
		cmds = append(cmds, m.exec.Batch(effs))
	}
	if m.st.Quitting {
		m.log.Info("quitting", zap.Int("jobs", len(m.st.Jobs)))
		return m, tea.Sequence(tea.Batch(cmds...), tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

// settle steps st with act and stores the outcome.
func (m *Model) settle(st app.State, act app.Action) []app.Effect {
	st, res, effs := Step(st, act, m.layout)
	m.st, m.res = st, res
	m.hits = render.NewHitMap(st, res)
	if m.pub != nil {
		m.pub.Store(st)
	}
	return effs
}

// paste reads the clipboard into the prompt as one line; runs of whitespace
// collapse to a single space.
func (m Model) paste() app.Action {
	text, err := m.ctx.Clipboard.Read()
	if err != nil {
		m.log.Warn("paste failed", zap.Error(err))
		return nil
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	return app.InsertText{Text: text}
}

// View implements tea.Model
func (m Model) View() string {
	if m.st.Quitting || m.renderer == nil {
		return ""
	}
	return m.renderer.Frame(m.st, m.res)
}
