// Package executor performs the side effects requested by the reducer and
// reports each outcome back as an Action.
package executor

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/clipboard"
	"github.com/b/tabdeck/pkg/perf"
	"github.com/b/tabdeck/pkg/store"
	"github.com/b/tabdeck/pkg/tools"
	"github.com/b/tabdeck/pkg/vcs"
)

var ErrUnknownEffect = errors.New("unknown effect")

// ToolRunner launches and probes external tools.
type ToolRunner interface {
	Run(ctx context.Context, dir, tool string, args ...string) (tools.Output, error)
	DetectAll(ctx context.Context, specs []tools.Spec) []tools.Status
}

// StatusSource reads working tree status, possibly cached.
type StatusSource interface {
	Get(ctx context.Context, dir string) (vcs.Status, error)
	Invalidate(dir string)
}

type DocumentSaver interface {
	Save(doc store.Document) error
}

type Options struct {
	Tools     ToolRunner
	VCS       StatusSource
	Store     DocumentSaver
	Clipboard clipboard.Clipboard
	Logger    *zap.Logger
}

// Executor runs effects. Effects are independent of each other and of the
// loop; ctx is cancelled only on shutdown.
type Executor struct {
	ctx   context.Context
	tools ToolRunner
	vcs   StatusSource
	store DocumentSaver
	clip  clipboard.Clipboard
	log   *zap.Logger
	stats perf.Stats
}

func New(ctx context.Context, opts Options) *Executor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = &clipboard.Memory{}
	}
	return &Executor{
		ctx:   ctx,
		tools: opts.Tools,
		vcs:   opts.VCS,
		store: opts.Store,
		clip:  clip,
		log:   log,
	}
}

// Execute performs eff and returns the feedback action. A failed effect
// yields both its failure action and the error; only an unrecognized effect
// yields a nil action.
func (e *Executor) Execute(ctx context.Context, eff app.Effect) (app.Action, error) {
	switch eff := eff.(type) {
	case app.RunTool:
		if e.tools == nil {
			err := fmt.Errorf("run %s: no tool runner", eff.Tool)
			return app.CommandFailed{JobID: eff.JobID, Err: err, ExitCode: -1}, err
		}
		out, err := e.tools.Run(ctx, eff.Dir, eff.Tool, eff.Args...)
		if err != nil {
			code := -1
			var execErr *tools.ExecError
			if errors.As(err, &execErr) {
				code = execErr.ExitCode
			}
			return app.CommandFailed{JobID: eff.JobID, Err: err, Output: out.Stdout, ExitCode: code}, err
		}
		return app.CommandFinished{JobID: eff.JobID, Output: out.Stdout, Duration: out.Duration}, nil

	case app.RefreshVCS:
		if e.vcs == nil {
			err := errors.New("no status source")
			return app.StatusFailed{Err: err}, err
		}
		if eff.Force {
			e.vcs.Invalidate(eff.Dir)
		}
		st, err := e.vcs.Get(ctx, eff.Dir)
		if err != nil {
			return app.StatusFailed{Err: err}, err
		}
		return app.StatusRefreshed{Status: st}, nil

	case app.DetectTools:
		if e.tools == nil {
			return app.ToolsDetected{Tools: unprobed(eff.Specs, "no tool runner")}, nil
		}
		return app.ToolsDetected{Tools: e.tools.DetectAll(ctx, eff.Specs)}, nil

	case app.SaveDocument:
		if e.store == nil {
			return app.DocumentSaved{}, nil
		}
		if err := e.store.Save(eff.Doc); err != nil {
			return app.DocumentFailed{Err: err}, err
		}
		return app.DocumentSaved{}, nil

	case app.CopyText:
		if err := e.clip.Write(eff.Text); err != nil {
			err = fmt.Errorf("copy: %w", err)
			return app.CopyFailed{Err: err}, err
		}
		return app.Copied{Bytes: len(eff.Text)}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownEffect, eff)
}

// Dispatch wraps eff in a bubbletea command so it runs on a command
// goroutine and its outcome arrives as a message. Panics become failure
// actions.
func (e *Executor) Dispatch(eff app.Effect) tea.Cmd {
	return func() tea.Msg {
		if act := e.run(eff); act != nil {
			return act
		}
		return nil
	}
}

// Batch dispatches every effect concurrently.
func (e *Executor) Batch(effs []app.Effect) tea.Cmd {
	if len(effs) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(effs))
	for i, eff := range effs {
		cmds[i] = e.Dispatch(eff)
	}
	return tea.Batch(cmds...)
}

// Stats exposes effect timings by effect name.
func (e *Executor) Stats() *perf.Stats { return &e.stats }

func (e *Executor) run(eff app.Effect) (act app.Action) {
	name := effectName(eff)
	log := e.log.With(zap.String("run_id", uuid.NewString()), zap.String("effect", name))

	defer func() {
		if r := recover(); r != nil {
			log.Error("effect panicked", zap.Any("panic", r), zap.Stack("stack"))
			act = failure(eff, fmt.Errorf("%s panicked: %v", name, r))
		}
	}()

	log.Debug("effect started", fields(eff)...)
	timer := perf.Start(log, name)
	act, err := e.Execute(e.ctx, eff)
	e.stats.Record(name, timer.Stop())
	switch {
	case errors.Is(err, ErrUnknownEffect):
		log.Error("effect dropped", zap.Error(err))
	case err != nil:
		log.Warn("effect failed", zap.Error(err))
	}
	return act
}

// failure builds the failure action reported when eff cannot complete.
func failure(eff app.Effect, err error) app.Action {
	switch eff := eff.(type) {
	case app.RunTool:
		return app.CommandFailed{JobID: eff.JobID, Err: err, ExitCode: -1}
	case app.RefreshVCS:
		return app.StatusFailed{Err: err}
	case app.DetectTools:
		return app.ToolsDetected{Tools: unprobed(eff.Specs, err.Error())}
	case app.SaveDocument:
		return app.DocumentFailed{Err: err}
	case app.CopyText:
		return app.CopyFailed{Err: err}
	}
	return nil
}

func unprobed(specs []tools.Spec, reason string) []tools.Status {
	out := make([]tools.Status, len(specs))
	for i, s := range specs {
		out[i] = tools.Status{Name: s.Name, Required: s.Required, Err: reason}
	}
	return out
}

func effectName(eff app.Effect) string {
	switch eff.(type) {
	case app.RunTool:
		return "run_tool"
	case app.RefreshVCS:
		return "refresh_vcs"
	case app.DetectTools:
		return "detect_tools"
	case app.SaveDocument:
		return "save_document"
	case app.CopyText:
		return "copy_text"
	}
	return fmt.Sprintf("%T", eff)
}

func fields(eff app.Effect) []zap.Field {
	switch eff := eff.(type) {
	case app.RunTool:
		return []zap.Field{zap.Int("job", eff.JobID), zap.String("tool", eff.Tool), zap.Strings("args", eff.Args)}
	case app.RefreshVCS:
		return []zap.Field{zap.String("dir", eff.Dir), zap.Bool("force", eff.Force)}
	case app.DetectTools:
		return []zap.Field{zap.Int("tools", len(eff.Specs))}
	case app.CopyText:
		return []zap.Field{zap.Int("bytes", len(eff.Text))}
	}
	return nil
}
